package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupTokenRoundtrip(t *testing.T) {
	tok, err := NewSignupToken("signup-secret", "user@example.com", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	email, err := ParseSignupToken("signup-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestSignupTokenWrongSecret(t *testing.T) {
	tok, err := NewSignupToken("signup-secret", "user@example.com", 15)
	require.NoError(t, err)

	_, err = ParseSignupToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidSignupToken)
}

func TestSignupTokenGarbage(t *testing.T) {
	_, err := ParseSignupToken("signup-secret", "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidSignupToken)

	_, err = ParseSignupToken("signup-secret", "")
	assert.ErrorIs(t, err, ErrInvalidSignupToken)
}
