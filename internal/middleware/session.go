package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rating-api/internal/repository"
	"github.com/iliyamo/movie-rating-api/internal/session"
	"github.com/iliyamo/movie-rating-api/internal/utils"
)

// SessionCookieName is the cookie carrying the signed session identifier.
const SessionCookieName = "session_id"

// sessionUserKey is the echo context key the guard stores the resolved
// user under. Handlers read it back through CurrentUser.
const sessionUserKey = "session_user"

// SessionUser is the authenticated identity attached to the request
// context by SessionAuth.
type SessionUser struct {
	ID        uint64
	Username  string
	Email     string
	SessionID string
}

// CurrentUser returns the authenticated user attached by SessionAuth.
// The second return is false on unguarded routes.
func CurrentUser(c echo.Context) (SessionUser, bool) {
	u, ok := c.Get(sessionUserKey).(SessionUser)
	return u, ok
}

// UserLoader resolves a session's owner. *repository.UserRepo satisfies
// it.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (*repository.User, error)
}

// SessionAuth validates the signed session cookie, loads the session
// from the store and the owning user from the database, and attaches a
// SessionUser to the request context. Every failure mode, missing
// cookie, bad signature, unknown or expired session, deleted user,
// yields the same 401 so callers cannot probe which check failed.
func SessionAuth(signer utils.CookieSigner, sessions *session.Manager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return unauthorized(c)
			}

			id, ok := signer.Verify(cookie.Value)
			if !ok {
				return unauthorized(c)
			}

			ctx := c.Request().Context()
			sess, err := sessions.Find(ctx, id)
			if err != nil {
				c.Logger().Errorf("session lookup failed: %v", err)
				return unauthorized(c)
			}
			if sess == nil {
				return unauthorized(c)
			}

			user, err := users.GetByID(ctx, sess.UserID)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(sessionUserKey, SessionUser{
				ID:        user.ID,
				Username:  user.Username,
				Email:     user.Email,
				SessionID: sess.ID,
			})
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
