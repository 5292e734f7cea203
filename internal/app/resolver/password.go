package resolver

import "golang.org/x/crypto/bcrypt"

// BcryptVerifier verifies visitor passwords against the bcrypt hashes the
// dashboard stores on link records. bcrypt's comparison is constant time.
type BcryptVerifier struct{}

// Verify reports whether plain matches the stored bcrypt hash. Any
// malformed hash verifies as false rather than erroring; a bad record must
// never crash or open the gate.
func (BcryptVerifier) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
