package util

import (
	"errors"
	"testing"
	"time"
)

func TestUnlockSigner_RoundTrip(t *testing.T) {
	s := NewUnlockSigner([]byte("test-secret"), time.Minute)

	token, err := s.Issue("abc")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if err := s.Validate("abc", token); err != nil {
		t.Fatalf("Validate rejected a fresh token: %v", err)
	}
}

func TestUnlockSigner_CodeBinding(t *testing.T) {
	s := NewUnlockSigner([]byte("test-secret"), time.Minute)

	token, err := s.Issue("abc")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if err := s.Validate("other", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token must be bound to its code, got %v", err)
	}
}

func TestUnlockSigner_Expiry(t *testing.T) {
	s := NewUnlockSigner([]byte("test-secret"), -time.Minute)

	token, err := s.Issue("abc")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if err := s.Validate("abc", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestUnlockSigner_Garbage(t *testing.T) {
	s := NewUnlockSigner([]byte("test-secret"), time.Minute)

	for _, token := range []string{"", "noseparator", "a.b", "!!.!!"} {
		if err := s.Validate("abc", token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected %q to be rejected, got %v", token, err)
		}
	}
}

func TestUnlockSigner_MissingSecret(t *testing.T) {
	s := NewUnlockSigner(nil, time.Minute)

	if _, err := s.Issue("abc"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret on Issue, got %v", err)
	}
	if err := s.Validate("abc", "whatever"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret on Validate, got %v", err)
	}
}
