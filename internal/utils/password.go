package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is used when a caller passes a cost below bcrypt's
// minimum. Matches the work factor the service has always hashed with.
const DefaultBcryptCost = 12

// HashPassword returns a salted bcrypt hash using the given cost. The salt
// is generated per call, so hashing the same plaintext twice yields two
// different digests.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
// A malformed hash simply fails verification instead of erroring, so
// callers can treat it as a boolean predicate.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
