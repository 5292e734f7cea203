package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/relinkd/relink/internal/app/model"
	"github.com/relinkd/relink/internal/app/repository"
)

type mockLoader struct {
	loadFn func(ctx context.Context, code string) (*model.Link, error)
}

func (m *mockLoader) Load(ctx context.Context, code string) (*model.Link, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, code)
	}
	return nil, repository.ErrLinkNotFound
}

type mockTokens struct {
	validateFn func(code, token string) error
}

func (m *mockTokens) Validate(code, token string) error {
	if m.validateFn != nil {
		return m.validateFn(code, token)
	}
	return errors.New("invalid")
}

func engineFor(link *model.Link) *Engine {
	return New(Deps{
		Loader: &mockLoader{
			loadFn: func(ctx context.Context, code string) (*model.Link, error) {
				if link != nil && (code == link.Code || code == link.Alias) {
					return link, nil
				}
				return nil, repository.ErrLinkNotFound
			},
		},
		Passwords: fakeVerifier{accept: "letmein"},
	})
}

func testNow() time.Time {
	return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
}

func TestEngine_UnknownCode(t *testing.T) {
	e := engineFor(nil)
	res := e.Resolve(context.Background(), Request{Code: "missing", Now: testNow()})
	if res.Status != StatusNotFound {
		t.Fatalf("expected NotFound, got %+v", res)
	}
}

func TestEngine_StorageErrorCollapsesToNotFound(t *testing.T) {
	e := New(Deps{
		Loader: &mockLoader{
			loadFn: func(ctx context.Context, code string) (*model.Link, error) {
				return nil, errors.New("connection refused")
			},
		},
		Passwords: fakeVerifier{},
	})

	res := e.Resolve(context.Background(), Request{Code: "abc", Now: testNow()})
	if res.Status != StatusNotFound {
		t.Fatalf("expected NotFound on storage failure, got %+v", res)
	}
}

func TestEngine_SuspendedBeatsEverything(t *testing.T) {
	link := &model.Link{
		Code:           "abc",
		URL:            "https://example.com",
		Active:         true,
		OwnerSuspended: true,
		PasswordHash:   "$2a$10$hash",
		DeviceRules: model.DeviceRuleSet{
			Enabled: true,
			Rules:   []model.DeviceRule{{Device: model.DeviceIOS, URL: "https://ios.example.com"}},
		},
	}

	res := engineFor(link).Resolve(context.Background(), Request{
		Code: "abc", Now: testNow(), Device: model.DeviceIOS, Password: "letmein",
	})
	if res.Status != StatusSuspended {
		t.Fatalf("expected Suspended, got %+v", res)
	}
}

func TestEngine_DeviceScenario(t *testing.T) {
	link := &model.Link{
		Code:   "abc",
		URL:    "https://default.example.com",
		Active: true,
		DeviceRules: model.DeviceRuleSet{
			Enabled: true,
			Rules:   []model.DeviceRule{{Device: model.DeviceIOS, URL: "https://ios.example.com"}},
		},
	}
	e := engineFor(link)

	res := e.Resolve(context.Background(), Request{Code: "abc", Now: testNow(), Device: model.DeviceIOS})
	if res.Status != StatusRedirect || res.URL != "https://ios.example.com" {
		t.Fatalf("expected iOS redirect, got %+v", res)
	}

	res = e.Resolve(context.Background(), Request{Code: "abc", Now: testNow(), Device: model.DeviceDesktop})
	if res.Status != StatusRedirect || res.URL != "https://default.example.com" {
		t.Fatalf("expected default redirect for desktop, got %+v", res)
	}
}

func TestEngine_AliasLookup(t *testing.T) {
	link := &model.Link{
		Code:   "x1y2z3",
		Alias:  "launch",
		URL:    "https://example.com",
		Active: true,
	}

	res := engineFor(link).Resolve(context.Background(), Request{Code: "launch", Now: testNow()})
	if res.Status != StatusRedirect || res.URL != "https://example.com" {
		t.Fatalf("expected alias to resolve, got %+v", res)
	}
}

func TestEngine_PasswordFlow(t *testing.T) {
	link := &model.Link{
		Code:         "abc",
		URL:          "https://default.example.com",
		Active:       true,
		PasswordHash: "$2a$10$hash",
		DeviceRules: model.DeviceRuleSet{
			Enabled: true,
			Rules:   []model.DeviceRule{{Device: model.DeviceIOS, URL: "https://ios.example.com"}},
		},
	}
	e := engineFor(link)

	// No credential: challenge, no URL leak.
	res := e.Resolve(context.Background(), Request{Code: "abc", Now: testNow(), Device: model.DeviceIOS})
	if res.Status != StatusPasswordRequired || res.URL != "" {
		t.Fatalf("expected PasswordRequired without URL, got %+v", res)
	}

	// Correct password: the same URL the ungated path would resolve.
	res = e.Resolve(context.Background(), Request{
		Code: "abc", Now: testNow(), Device: model.DeviceIOS, Password: "letmein",
	})
	if res.Status != StatusRedirect || res.URL != "https://ios.example.com" {
		t.Fatalf("expected device-resolved reveal, got %+v", res)
	}

	// Wrong password.
	res = e.Resolve(context.Background(), Request{
		Code: "abc", Now: testNow(), Device: model.DeviceIOS, Password: "wrong",
	})
	if res.Status != StatusUnauthorized || res.URL != "" {
		t.Fatalf("expected Unauthorized without URL, got %+v", res)
	}
}

func TestEngine_UnlockTokenSkipsChallenge(t *testing.T) {
	link := &model.Link{
		Code:         "abc",
		URL:          "https://example.com",
		Active:       true,
		PasswordHash: "$2a$10$hash",
	}

	e := New(Deps{
		Loader: &mockLoader{
			loadFn: func(ctx context.Context, code string) (*model.Link, error) {
				return link, nil
			},
		},
		Passwords: fakeVerifier{accept: "letmein"},
		Tokens: &mockTokens{
			validateFn: func(code, token string) error {
				if token == "good" {
					return nil
				}
				return errors.New("invalid")
			},
		},
	})

	res := e.Resolve(context.Background(), Request{Code: "abc", Now: testNow(), UnlockToken: "good"})
	if res.Status != StatusRedirect || res.URL != "https://example.com" {
		t.Fatalf("expected valid token to reveal, got %+v", res)
	}

	res = e.Resolve(context.Background(), Request{Code: "abc", Now: testNow(), UnlockToken: "stale"})
	if res.Status != StatusPasswordRequired {
		t.Fatalf("expected stale token to re-challenge, got %+v", res)
	}
}

func TestEngine_UnlockTokenValidatedAgainstRequestCode(t *testing.T) {
	link := &model.Link{
		Code:         "x1y2z3",
		Alias:        "launch",
		URL:          "https://example.com",
		Active:       true,
		PasswordHash: "$2a$10$hash",
	}

	// Validator accepts only tokens issued for the code they are checked
	// against, like the real HMAC signer.
	issuedFor := "launch"
	e := New(Deps{
		Loader: &mockLoader{
			loadFn: func(ctx context.Context, code string) (*model.Link, error) {
				if code == link.Code || code == link.Alias {
					return link, nil
				}
				return nil, repository.ErrLinkNotFound
			},
		},
		Passwords: fakeVerifier{accept: "letmein"},
		Tokens: &mockTokens{
			validateFn: func(code, token string) error {
				if code == issuedFor && token == "good" {
					return nil
				}
				return errors.New("invalid")
			},
		},
	})

	// A visitor who unlocked via the alias keeps access on later alias
	// visits; the token is bound to the code in the request, not the
	// canonical short code.
	res := e.Resolve(context.Background(), Request{Code: "launch", Now: testNow(), UnlockToken: "good"})
	if res.Status != StatusRedirect || res.URL != "https://example.com" {
		t.Fatalf("expected alias unlock token to reveal, got %+v", res)
	}

	// The same token presented under the canonical code does not verify.
	res = e.Resolve(context.Background(), Request{Code: "x1y2z3", Now: testNow(), UnlockToken: "good"})
	if res.Status != StatusPasswordRequired {
		t.Fatalf("expected re-challenge under a different code, got %+v", res)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	link := &model.Link{Code: "abc", URL: "https://example.com", Active: true}
	e := engineFor(link)
	req := Request{Code: "abc", Now: testNow(), Device: model.DeviceDesktop}

	first := e.Resolve(context.Background(), req)
	second := e.Resolve(context.Background(), req)
	if first != second {
		t.Fatalf("identical requests must resolve identically: %+v vs %+v", first, second)
	}
}

func TestEngine_TimeRulesOverDeviceScenario(t *testing.T) {
	link := &model.Link{
		Code:   "abc",
		URL:    "https://default.example.com",
		Active: true,
		TimeRules: model.TimeRuleSet{
			Enabled: true,
			Rules: []model.TimeRule{
				{Start: "09:00", End: "17:00", Days: []int{1, 2, 3, 4, 5}, Timezone: "UTC", URL: "https://biz-hours.example.com"},
			},
		},
		DeviceRules: model.DeviceRuleSet{
			Enabled: true,
			Rules:   []model.DeviceRule{{Device: model.DeviceIOS, URL: "https://ios.example.com"}},
		},
	}
	e := engineFor(link)

	// Tuesday 10:00 UTC: the time rule wins over the matching device rule.
	res := e.Resolve(context.Background(), Request{Code: "abc", Now: testNow(), Device: model.DeviceIOS})
	if res.Status != StatusRedirect || res.URL != "https://biz-hours.example.com" {
		t.Fatalf("expected time-rule redirect, got %+v", res)
	}

	// Saturday: time rules miss, device rule applies.
	saturday := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	res = e.Resolve(context.Background(), Request{Code: "abc", Now: saturday, Device: model.DeviceIOS})
	if res.Status != StatusRedirect || res.URL != "https://ios.example.com" {
		t.Fatalf("expected device redirect on Saturday, got %+v", res)
	}
}
