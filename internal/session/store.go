package session

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the key-value persistence interface the Manager works against:
// put, get and delete of single records under an opaque key.  The backing
// store is assumed to provide atomic single-key operations.
type Store interface {
	Put(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

const keyPrefix = "session:"

// RedisStore persists each session as a Redis hash under "session:<id>"
// with user_id, issued_at and expires_at fields.  A key TTL slightly past
// the session expiry garbage-collects records nobody looks up again.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Put writes the full session record and sets the key TTL.
func (s *RedisStore) Put(ctx context.Context, sess Session, ttl time.Duration) error {
	key := keyPrefix + sess.ID
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"user_id", strconv.FormatUint(sess.UserID, 10),
		"issued_at", strconv.FormatInt(sess.IssuedAt, 10),
		"expires_at", strconv.FormatInt(sess.ExpiresAt, 10),
	)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Get reads a session record.  A missing key returns (nil, nil); corrupt
// records are treated as missing rather than surfacing a decode error.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	vals, err := s.rdb.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	userID, err1 := strconv.ParseUint(vals["user_id"], 10, 64)
	issuedAt, err2 := strconv.ParseInt(vals["issued_at"], 10, 64)
	expiresAt, err3 := strconv.ParseInt(vals["expires_at"], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, nil
	}
	return &Session{ID: id, UserID: userID, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Delete removes a session record.  Deleting an absent key is a no-op.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}
