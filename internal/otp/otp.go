// Package otp implements the one-time codes behind email verification.
// A code lives like a session (random id, fixed expiry, stored in Redis)
// but is single-use and bound to an email address instead of a user.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeLength is the number of characters in a verification code.
const CodeLength = 32

// Lifetime is how long a pending verification stays valid.
const Lifetime = 10 * time.Minute

const (
	keyPrefix = "emailverif:"
	alphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ErrNotFound is returned when no pending verification matches a code.
var ErrNotFound = errors.New("verification not found")

// ErrExpired is returned when the verification existed but its expiry had
// passed. Distinct from ErrNotFound so handlers can tell the caller to
// restart rather than implying the link never existed.
var ErrExpired = errors.New("verification expired")

// NewCode returns a random alphanumeric one-time code.
func NewCode() (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, CodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Store keeps pending email verifications in Redis, one hash per code
// under "emailverif:<code>" with email, created_at and expires_at fields.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Put registers a pending verification for an email address. The Redis
// TTL runs slightly past the logical expiry so Consume can still report
// ErrExpired instead of ErrNotFound inside that window.
func (s *Store) Put(ctx context.Context, code, email string) error {
	now := time.Now().UnixMilli()
	key := keyPrefix + code
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"email", email,
		"created_at", strconv.FormatInt(now, 10),
		"expires_at", strconv.FormatInt(now+Lifetime.Milliseconds(), 10),
	)
	pipe.Expire(ctx, key, Lifetime+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

// consumeScript reads and deletes a verification hash in one atomic
// round trip so concurrent lookups of the same code cannot both win.
var consumeScript = redis.NewScript(`
local vals = redis.call('HGETALL', KEYS[1])
if #vals == 0 then
  return vals
end
redis.call('DEL', KEYS[1])
return vals
`)

// Consume resolves a code to its email address. The record is deleted in
// the same Redis call that reads it, whatever the outcome: a code can be
// tried exactly once, even under concurrent requests.
func (s *Store) Consume(ctx context.Context, code string) (string, error) {
	key := keyPrefix + code
	raw, err := consumeScript.Run(ctx, s.rdb, []string{key}).Slice()
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", ErrNotFound
	}
	vals := make(map[string]string, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		k, _ := raw[i].(string)
		v, _ := raw[i+1].(string)
		vals[k] = v
	}
	expiresAt, err := strconv.ParseInt(vals["expires_at"], 10, 64)
	if err != nil || expiresAt < time.Now().UnixMilli() {
		return "", ErrExpired
	}
	return vals["email"], nil
}
