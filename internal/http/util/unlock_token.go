package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired unlock token")
	ErrMissingSecret = errors.New("unlock secret is not configured")
)

// UnlockSigner issues and validates the HMAC tokens set as a cookie after a
// visitor passes a link's password challenge, so repeated visits within the
// TTL are not re-challenged. Tokens are bound to a single short code.
type UnlockSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewUnlockSigner returns a signer issuing tokens valid for ttl.
func NewUnlockSigner(secret []byte, ttl time.Duration) *UnlockSigner {
	return &UnlockSigner{secret: secret, ttl: ttl}
}

// TTL exposes the configured token lifetime, for cookie expiry.
func (s *UnlockSigner) TTL() time.Duration {
	return s.ttl
}

// Issue mints an unlock token for the given short code.
func (s *UnlockSigner) Issue(code string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	payload := make([]byte, 16) // 8 bytes expiry + 8 random bytes
	expires := uint64(time.Now().Add(s.ttl).Unix())
	binary.BigEndian.PutUint64(payload[:8], expires)
	if _, err := rand.Read(payload[8:]); err != nil {
		return "", err
	}

	signature := s.sign(code, payload)
	return fmt.Sprintf("%s.%s",
		base64.RawURLEncoding.EncodeToString(payload),
		base64.RawURLEncoding.EncodeToString(signature[:16]),
	), nil
}

// Validate checks signature integrity and expiry of a token for code.
func (s *UnlockSigner) Validate(code, token string) error {
	if len(s.secret) == 0 {
		return ErrMissingSecret
	}

	payloadEnc, sigEnc, ok := strings.Cut(token, ".")
	if !ok {
		return ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadEnc)
	if err != nil || len(payload) != 16 {
		return ErrInvalidToken
	}
	sigProvided, err := base64.RawURLEncoding.DecodeString(sigEnc)
	if err != nil || len(sigProvided) != 16 {
		return ErrInvalidToken
	}

	expected := s.sign(code, payload)
	if !hmac.Equal(sigProvided, expected[:16]) {
		return ErrInvalidToken
	}

	expires := binary.BigEndian.Uint64(payload[:8])
	if uint64(time.Now().Unix()) > expires {
		return ErrInvalidToken
	}

	return nil
}

func (s *UnlockSigner) sign(code string, payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(code))
	mac.Write([]byte("|"))
	mac.Write(payload)
	return mac.Sum(nil)
}
