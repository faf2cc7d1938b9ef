package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, lifetime time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewManager(NewRedisStore(rdb), lifetime), mr
}

func TestManagerCreateAndFind(t *testing.T) {
	m, _ := newTestManager(t, 10*24*time.Hour)
	ctx := context.Background()

	sess, err := m.Create(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, sess.ID, 96)
	assert.Equal(t, uint64(42), sess.UserID)
	assert.Equal(t, sess.IssuedAt+(10*24*time.Hour).Milliseconds(), sess.ExpiresAt)

	got, err := m.Find(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess, *got)
}

func TestManagerCreateUniqueIDs(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	a, err := m.Create(ctx, 1)
	require.NoError(t, err)
	b, err := m.Create(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestManagerFindUnknownID(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	got, err := m.Find(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestManagerFindExpiredDeletesRecord(t *testing.T) {
	m, mr := newTestManager(t, time.Hour)
	ctx := context.Background()

	// Write a session whose expiry is already in the past. The store TTL
	// has slack past the expiry, so the record is still present in Redis.
	now := time.Now().UnixMilli()
	expired := Session{
		ID:        "expired-session",
		UserID:    7,
		IssuedAt:  now - 2*time.Hour.Milliseconds(),
		ExpiresAt: now - time.Hour.Milliseconds(),
	}
	require.NoError(t, m.store.Put(ctx, expired, time.Hour))
	require.True(t, mr.Exists("session:expired-session"))

	got, err := m.Find(ctx, "expired-session")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The lazy expiry check also removed the stale record.
	assert.False(t, mr.Exists("session:expired-session"))
}

func TestManagerDeleteIdempotent(t *testing.T) {
	m, mr := newTestManager(t, time.Hour)
	ctx := context.Background()

	sess, err := m.Create(ctx, 5)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, sess.ID))
	assert.False(t, mr.Exists("session:"+sess.ID))

	// Deleting again is still fine.
	require.NoError(t, m.Delete(ctx, sess.ID))

	got, err := m.Find(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreCorruptRecordBehavesAsAbsent(t *testing.T) {
	m, mr := newTestManager(t, time.Hour)

	mr.HSet("session:corrupt", "user_id", "not-a-number")

	got, err := m.Find(context.Background(), "corrupt")
	require.NoError(t, err)
	assert.Nil(t, got)
}
