package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundtrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-passphrase", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-passphrase"))
	assert.False(t, VerifyPassword(hash, "wrong-passphrase"))
}

func TestHashPasswordDiffersPerCall(t *testing.T) {
	h1, err := HashPassword("same-input", 10)
	require.NoError(t, err)
	h2, err := HashPassword("same-input", 10)
	require.NoError(t, err)
	// bcrypt salts every hash, so two hashes of the same input differ.
	assert.NotEqual(t, h1, h2)
}

func TestHashPasswordCostFloor(t *testing.T) {
	// A cost below bcrypt's minimum falls back to the default.
	hash, err := HashPassword("pw", 0)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "pw"))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "pw"))
	assert.False(t, VerifyPassword("", "pw"))
}
