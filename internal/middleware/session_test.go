package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rating-api/internal/repository"
	"github.com/iliyamo/movie-rating-api/internal/session"
	"github.com/iliyamo/movie-rating-api/internal/utils"
)

type stubUserLoader struct {
	users map[uint64]*repository.User
}

func (s stubUserLoader) GetByID(_ context.Context, id uint64) (*repository.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

type guardFixture struct {
	e        *echo.Echo
	signer   utils.CookieSigner
	sessions *session.Manager
}

func newGuardFixture(t *testing.T) guardFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	signer := utils.NewCookieSigner("guard-test-secret")
	sessions := session.NewManager(session.NewRedisStore(rdb), time.Hour)
	users := stubUserLoader{users: map[uint64]*repository.User{
		7: {ID: 7, Username: "dave", Email: "dave@example.com"},
	}}

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"username": u.Username})
	}, SessionAuth(signer, sessions, users))

	return guardFixture{e: e, signer: signer, sessions: sessions}
}

func (f guardFixture) request(cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestSessionAuthAllowsValidCookie(t *testing.T) {
	f := newGuardFixture(t)

	sess, err := f.sessions.Create(context.Background(), 7)
	require.NoError(t, err)

	rec := f.request(f.signer.Sign(sess.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dave")
}

func TestSessionAuthRejectsMissingCookie(t *testing.T) {
	f := newGuardFixture(t)

	rec := f.request("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestSessionAuthRejectsBadSignature(t *testing.T) {
	f := newGuardFixture(t)

	sess, err := f.sessions.Create(context.Background(), 7)
	require.NoError(t, err)

	// Unsigned raw id.
	rec := f.request(sess.ID)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Signed with a different secret.
	other := utils.NewCookieSigner("other-secret")
	rec = f.request(other.Sign(sess.ID))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsUnknownSession(t *testing.T) {
	f := newGuardFixture(t)

	// Properly signed but the session was never created.
	rec := f.request(f.signer.Sign("no-such-session"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestSessionAuthRejectsRevokedSession(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	sess, err := f.sessions.Create(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Delete(ctx, sess.ID))

	rec := f.request(f.signer.Sign(sess.ID))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsDeletedUser(t *testing.T) {
	f := newGuardFixture(t)

	// Session points at a user id the loader does not know.
	sess, err := f.sessions.Create(context.Background(), 999)
	require.NoError(t, err)

	rec := f.request(f.signer.Sign(sess.ID))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}
