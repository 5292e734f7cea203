package resolver

import (
	"github.com/relinkd/relink/internal/app/model"
)

// PasswordVerifier checks a plaintext password against a stored hash. The
// comparison must be constant time; combined with a generic unauthorized
// response this keeps short-code enumeration and password probing from
// being distinguishable by timing.
type PasswordVerifier interface {
	Verify(plain, hash string) bool
}

// CheckAccess runs the access gate on an already-resolved destination.
// A PasswordRequired result deliberately carries no URL: the challenge page
// must not leak the target.
func CheckAccess(link *model.Link, resolvedURL, supplied string, verifier PasswordVerifier) Result {
	if !link.PasswordProtected() {
		return Redirect(resolvedURL)
	}
	if supplied == "" {
		return Result{Status: StatusPasswordRequired}
	}
	if verifier.Verify(supplied, link.PasswordHash) {
		return Redirect(resolvedURL)
	}
	return Result{Status: StatusUnauthorized}
}
