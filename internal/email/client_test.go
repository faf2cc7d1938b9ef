package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-123", "Movie Ratings", "noreply@example.com")
	err := c.Send(context.Background(), "user@example.com", "Hello", "<p>hi</p>", "hi")
	require.NoError(t, err)

	assert.Equal(t, "Movie Ratings", got.Sender.Name)
	assert.Equal(t, "noreply@example.com", got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "user@example.com", got.To[0].Email)
	assert.Equal(t, "Hello", got.Subject)
	assert.Equal(t, "<p>hi</p>", got.HTMLContent)
	assert.Equal(t, "hi", got.TextContent)
}

func TestSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad key"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "wrong-key", "Movie Ratings", "noreply@example.com")
	err := c.Send(context.Background(), "user@example.com", "Hello", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad key")
}

func TestSendVerificationBuildsLink(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-123", "Movie Ratings", "noreply@example.com")
	err := c.SendVerification(context.Background(), "user@example.com", "https://app.example.com/verify", "abc123")
	require.NoError(t, err)

	assert.Contains(t, got.HTMLContent, "https://app.example.com/verify/abc123")
	assert.Contains(t, got.TextContent, "https://app.example.com/verify/abc123")
	assert.NotEmpty(t, got.Subject)
}
