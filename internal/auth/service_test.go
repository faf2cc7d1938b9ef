package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rating-api/internal/repository"
	"github.com/iliyamo/movie-rating-api/internal/session"
	"github.com/iliyamo/movie-rating-api/internal/utils"
)

// stubUserStore keeps users in memory, keyed the same way the SQL
// repository keys them.
type stubUserStore struct {
	nextID uint64
	users  map[uint64]*repository.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{nextID: 1, users: map[uint64]*repository.User{}}
}

func (s *stubUserStore) Create(_ context.Context, username, email, passwordHash string, emailValidated bool) (uint64, error) {
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return 0, repository.ErrUserExists
		}
	}
	id := s.nextID
	s.nextID++
	s.users[id] = &repository.User{
		ID:             id,
		Username:       username,
		Email:          email,
		PasswordHash:   passwordHash,
		EmailValidated: emailValidated,
	}
	return id, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUserStore) GetByUsername(_ context.Context, username string) (*repository.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUserStore) GetByID(_ context.Context, id uint64) (*repository.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func newTestService(t *testing.T) (*Service, *stubUserStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := newStubUserStore()
	sessions := session.NewManager(session.NewRedisStore(rdb), time.Hour)
	return New(users, sessions, 10), users
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "plain-pw", true)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.EmailValidated)
	assert.NotEqual(t, "plain-pw", u.PasswordHash)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "plain-pw"))

	_, err = svc.Register(ctx, "alice", "other@example.com", "pw", true)
	assert.ErrorIs(t, err, repository.ErrUserExists)
	assert.Len(t, store.users, 1)
}

func TestVerifyCredentialsByEmailAndUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "bob@example.com", "bobs-pw", true)
	require.NoError(t, err)

	byEmail, err := svc.VerifyCredentials(ctx, "bob@example.com", "bobs-pw")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "bob", byEmail.Username)

	byName, err := svc.VerifyCredentials(ctx, "bob", "bobs-pw")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, byEmail.ID, byName.ID)
}

func TestVerifyCredentialsUniformFailure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol", "carol@example.com", "right-pw", true)
	require.NoError(t, err)

	// Wrong password and unknown identity look identical to the caller.
	u, err := svc.VerifyCredentials(ctx, "carol", "wrong-pw")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = svc.VerifyCredentials(ctx, "nobody", "right-pw")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestVerifyCredentialsEmailShapedInputNeverMatchesUsername(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// A user whose username happens to look like an email address.
	hash, err := utils.HashPassword("pw", 10)
	require.NoError(t, err)
	store.users[99] = &repository.User{
		ID:           99,
		Username:     "trap@example.com",
		Email:        "real@example.com",
		PasswordHash: hash,
	}

	// Email-shaped input goes down the email path only; no username
	// fallback.
	u, err := svc.VerifyCredentials(ctx, "trap@example.com", "pw")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestVerifyCredentialsPropagatesStoreErrors(t *testing.T) {
	svc, _ := newTestService(t)
	svc.users = failingUserStore{}

	_, err := svc.VerifyCredentials(context.Background(), "any", "pw")
	assert.Error(t, err)
}

type failingUserStore struct{}

var errStoreDown = errors.New("store down")

func (failingUserStore) Create(context.Context, string, string, string, bool) (uint64, error) {
	return 0, errStoreDown
}
func (failingUserStore) GetByEmail(context.Context, string) (*repository.User, error) {
	return nil, errStoreDown
}
func (failingUserStore) GetByUsername(context.Context, string) (*repository.User, error) {
	return nil, errStoreDown
}
func (failingUserStore) GetByID(context.Context, uint64) (*repository.User, error) {
	return nil, errStoreDown
}

func TestSessionLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.IssueSession(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sess.UserID)

	require.NoError(t, svc.RevokeSession(ctx, sess.ID))
	// Revoking twice is fine.
	require.NoError(t, svc.RevokeSession(ctx, sess.ID))
}
