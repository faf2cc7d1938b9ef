package otp

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb), mr
}

func TestNewCodeShape(t *testing.T) {
	a, err := NewCode()
	require.NoError(t, err)
	b, err := NewCode()
	require.NoError(t, err)

	assert.Len(t, a, CodeLength)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.Contains(t, alphabet, string(r))
	}
}

func TestPutAndConsume(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	code, err := NewCode()
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, code, "new@example.com"))

	email, err := store.Consume(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", email)
}

func TestConsumeIsSingleUse(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	code, err := NewCode()
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, code, "new@example.com"))

	_, err = store.Consume(ctx, code)
	require.NoError(t, err)

	// The second attempt finds nothing: the record was deleted on first
	// lookup.
	_, err = store.Consume(ctx, code)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeConcurrentSingleWinner(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	code, err := NewCode()
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, code, "new@example.com"))

	const attempts = 8
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := store.Consume(ctx, code)
			results <- err
		}()
	}

	// Read and delete happen in one Redis call, so exactly one attempt
	// can see the record.
	var wins, misses int
	for i := 0; i < attempts; i++ {
		switch err := <-results; {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrNotFound):
			misses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, misses)
}

func TestConsumeUnknownCode(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Consume(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeExpiredCode(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	// A record whose logical expiry passed but whose Redis TTL has not.
	past := time.Now().Add(-time.Minute).UnixMilli()
	mr.HSet("emailverif:stale-code",
		"email", "late@example.com",
		"created_at", strconv.FormatInt(past-Lifetime.Milliseconds(), 10),
		"expires_at", strconv.FormatInt(past, 10),
	)

	_, err := store.Consume(ctx, "stale-code")
	assert.ErrorIs(t, err, ErrExpired)

	// Expired consumption still burned the code.
	_, err = store.Consume(ctx, "stale-code")
	assert.ErrorIs(t, err, ErrNotFound)
}
