package session

import (
	"context"
	"time"

	"github.com/iliyamo/movie-rating-api/internal/utils"
)

// storeTTLSlack keeps the Redis key alive a bit past the session expiry so
// Find can still observe the expired record and delete it explicitly.
const storeTTLSlack = time.Hour

// Manager owns the session lifecycle: creation, lookup with lazy expiry,
// and idempotent deletion.  Lifetime is fixed at construction and applied
// to every session it creates.
type Manager struct {
	store    Store
	lifetime time.Duration
}

// NewManager builds a Manager over a Store with a fixed session lifetime.
func NewManager(store Store, lifetime time.Duration) *Manager {
	return &Manager{store: store, lifetime: lifetime}
}

// Create generates a random session id for the user, computes the expiry
// from the fixed lifetime, persists the record and returns it.
func (m *Manager) Create(ctx context.Context, userID uint64) (Session, error) {
	id, err := utils.NewSessionID()
	if err != nil {
		return Session{}, err
	}
	now := time.Now().UnixMilli()
	sess := Session{
		ID:        id,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now + m.lifetime.Milliseconds(),
	}
	if err := m.store.Put(ctx, sess, m.lifetime+storeTTLSlack); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Find resolves a session id.  Absent ids return (nil, nil).  A record past
// its expiry is deleted and also reported as (nil, nil): callers cannot
// distinguish expired sessions from ones that never existed.
func (m *Manager) Find(ctx context.Context, id string) (*Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if sess.ExpiresAt < time.Now().UnixMilli() {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return sess, nil
}

// Delete removes a session.  It is idempotent: deleting an id that does
// not exist is not an error.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}
