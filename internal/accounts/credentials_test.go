package accounts

import (
	"testing"

	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	email, err := NormalizeEmail("  Ops@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", email)

	for _, bad := range []string{"", "not-an-email", "Ops <ops@example.com>"} {
		_, err := NormalizeEmail(bad)
		assert.ErrorIs(t, err, gateway.ErrInvalidCredentials, bad)
	}
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, gateway.ErrWeakPassword)

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, ComparePassword(hash, "secret1"))
	assert.ErrorIs(t, ComparePassword(hash, "secret2"), gateway.ErrInvalidCredentials)
}

func TestTokens(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, HashToken(a), HashToken(b))
}
