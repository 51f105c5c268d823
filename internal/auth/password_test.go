package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, password := range []string{"secret", "p", "correct horse battery staple"} {
		hash, err := h.Hash(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, hash, "hash must differ from the raw password")
		assert.True(t, h.Compare(hash, password))
		assert.False(t, h.Compare(hash, password+"x"))
	}
}

func TestBcryptHasherCostFallback(t *testing.T) {
	// Out-of-range work factors fall back to the bcrypt default.
	h := NewBcryptHasher(99)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)

	h = NewBcryptHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestCompareAgainstEmptyHash(t *testing.T) {
	// Accounts created through an external identity provider have no hash;
	// no password may ever match them.
	h := NewBcryptHasher(bcrypt.MinCost)
	assert.False(t, h.Compare("", ""))
	assert.False(t, h.Compare("", "secret"))
}
