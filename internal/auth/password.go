// Package auth holds the password hasher, the session token issuer, the
// session cookie contract, and the middleware that turns the cookie back into
// a caller identity.
package auth

import "golang.org/x/crypto/bcrypt"

// BcryptHasher derives and verifies one-way password hashes. Cost is the
// bcrypt work factor; zero falls back to bcrypt.DefaultCost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether password matches the stored hash. bcrypt's
// comparison is constant time.
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
