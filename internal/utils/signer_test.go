package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieSignerRoundtrip(t *testing.T) {
	s := NewCookieSigner("test-secret")

	id, err := NewSessionID()
	require.NoError(t, err)

	signed := s.Sign(id)
	assert.True(t, strings.HasPrefix(signed, id+"."))

	got, ok := s.Verify(signed)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestCookieSignerRejectsTampering(t *testing.T) {
	s := NewCookieSigner("test-secret")
	signed := s.Sign("some-session-id")

	// Flip a character of the id part.
	tampered := "Xome-session-id" + signed[len("some-session-id"):]
	_, ok := s.Verify(tampered)
	assert.False(t, ok)

	// Truncate the signature.
	_, ok = s.Verify(signed[:len(signed)-2])
	assert.False(t, ok)
}

func TestCookieSignerRejectsWrongSecret(t *testing.T) {
	signed := NewCookieSigner("secret-a").Sign("id")
	_, ok := NewCookieSigner("secret-b").Verify(signed)
	assert.False(t, ok)
}

func TestCookieSignerRejectsGarbage(t *testing.T) {
	s := NewCookieSigner("test-secret")
	for _, v := range []string{"", "no-separator", ".", "id.", ".sig"} {
		_, ok := s.Verify(v)
		assert.False(t, ok, "value %q should not verify", v)
	}
}

func TestNewSessionIDLengthAndUniqueness(t *testing.T) {
	a, err := NewSessionID()
	require.NoError(t, err)
	b, err := NewSessionID()
	require.NoError(t, err)

	// 48 random bytes hex-encoded.
	assert.Len(t, a, 96)
	assert.NotEqual(t, a, b)
}
