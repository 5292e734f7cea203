package resolver

import (
	"testing"

	"github.com/relinkd/relink/internal/app/model"
)

type fakeVerifier struct {
	accept string
}

func (f fakeVerifier) Verify(plain, hash string) bool {
	return plain == f.accept
}

func TestCheckAccess_NoPassword(t *testing.T) {
	link := &model.Link{Code: "abc", URL: "https://example.com", Active: true}

	res := CheckAccess(link, "https://example.com", "", fakeVerifier{})
	if res.Status != StatusRedirect || res.URL != "https://example.com" {
		t.Fatalf("expected immediate reveal, got %+v", res)
	}
}

func TestCheckAccess_ChallengeWithoutSupplied(t *testing.T) {
	link := &model.Link{Code: "abc", URL: "https://example.com", Active: true, PasswordHash: "$2a$10$hash"}

	res := CheckAccess(link, "https://example.com", "", fakeVerifier{accept: "letmein"})
	if res.Status != StatusPasswordRequired {
		t.Fatalf("expected PasswordRequired, got %+v", res)
	}
	if res.URL != "" {
		t.Fatalf("challenge response must not leak the URL, got %q", res.URL)
	}
}

func TestCheckAccess_CorrectPassword(t *testing.T) {
	link := &model.Link{Code: "abc", URL: "https://example.com", Active: true, PasswordHash: "$2a$10$hash"}

	res := CheckAccess(link, "https://resolved.example.com", "letmein", fakeVerifier{accept: "letmein"})
	if res.Status != StatusRedirect {
		t.Fatalf("expected reveal, got %+v", res)
	}
	// The revealed URL is exactly what the ungated path resolved.
	if res.URL != "https://resolved.example.com" {
		t.Fatalf("expected resolved URL, got %q", res.URL)
	}
}

func TestCheckAccess_WrongPassword(t *testing.T) {
	link := &model.Link{Code: "abc", URL: "https://example.com", Active: true, PasswordHash: "$2a$10$hash"}

	res := CheckAccess(link, "https://example.com", "nope", fakeVerifier{accept: "letmein"})
	if res.Status != StatusUnauthorized {
		t.Fatalf("expected Unauthorized, got %+v", res)
	}
	if res.URL != "" {
		t.Fatalf("unauthorized response must not leak the URL, got %q", res.URL)
	}
}
