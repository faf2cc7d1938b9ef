package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rating-api/internal/auth"
	"github.com/iliyamo/movie-rating-api/internal/config"
	"github.com/iliyamo/movie-rating-api/internal/email"
	"github.com/iliyamo/movie-rating-api/internal/middleware"
	"github.com/iliyamo/movie-rating-api/internal/otp"
	"github.com/iliyamo/movie-rating-api/internal/queue"
	"github.com/iliyamo/movie-rating-api/internal/repository"
	"github.com/iliyamo/movie-rating-api/internal/session"
	"github.com/iliyamo/movie-rating-api/internal/utils"
)

// AuthHandler bundles dependencies for the registration and session
// endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Auth   *auth.Service
	Users  *repository.UserRepo
	Codes  *otp.Store
	Mailer *email.Client
	Events *queue.Publisher
	Signer utils.CookieSigner
}

func NewAuthHandler(cfg config.Config, svc *auth.Service, users *repository.UserRepo, codes *otp.Store, mailer *email.Client, events *queue.Publisher) *AuthHandler {
	return &AuthHandler{
		Cfg:    cfg,
		Auth:   svc,
		Users:  users,
		Codes:  codes,
		Mailer: mailer,
		Events: events,
		Signer: utils.NewCookieSigner(cfg.CookieSecret),
	}
}

// ----- DTOs -----

type registerEmailReq struct {
	Email string `json:"email"`
}
type signupReq struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeatedPassword"`
}
type loginReq struct {
	User     string `json:"emailOrUsername"`
	Password string `json:"password"`
}

// RegisterEmail starts registration: it stores a one-time verification
// code and mails a link carrying it. An address that already belongs to
// an account is rejected before any email goes out.
func (h *AuthHandler) RegisterEmail(c echo.Context) error {
	var req registerEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	code, err := otp.NewCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "code generation failed"})
	}
	if err := h.Codes.Put(ctx, code, req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store verification failed"})
	}
	if err := h.Mailer.SendVerification(ctx, req.Email, h.Cfg.VerifyURLBase, code); err != nil {
		c.Logger().Errorf("send verification email: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "send email failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "verification email sent"})
}

// VerifyEmail consumes a verification code and exchanges it for a
// short-lived signup token bound to the verified address. The code is
// single-use: a second visit with the same link gets 404.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	addr, err := h.Codes.Consume(ctx, code)
	switch {
	case errors.Is(err, otp.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "verification not found"})
	case errors.Is(err, otp.ErrExpired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "verification expired"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}

	tok, err := utils.NewSignupToken(h.Cfg.SignupTokenSecret, addr, h.Cfg.SignupTokenTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"email":   addr,
		"token":   tok.Token,
		"expires": tok.Exp,
	})
}

// Signup finishes registration. The caller presents the signup token
// from VerifyEmail as a bearer credential; the account is created with
// the token's email, already marked validated, and a session is opened
// right away.
func (h *AuthHandler) Signup(c echo.Context) error {
	raw := bearerToken(c)
	if raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "signup token required"})
	}
	addr, err := utils.ParseSignupToken(h.Cfg.SignupTokenSecret, raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signup token"})
	}

	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	if strings.Contains(req.Username, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must not look like an email"})
	}
	if req.Password != req.RepeatedPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Auth.Register(ctx, req.Username, addr, req.Password, true)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	sess, err := h.Auth.IssueSession(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	h.setSessionCookie(c, sess)

	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pcancel()
		_ = h.Events.Publish(pctx, queue.UserRegisteredQueue, queue.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Username:     user.Username,
			Email:        user.Email,
			RegisteredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, user.Public())
}

// Login verifies an email-or-username plus password pair and opens a
// session. Unknown identity and wrong password collapse into the same
// 401 body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.User = strings.TrimSpace(req.User)
	if req.User == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Auth.VerifyCredentials(ctx, req.User, req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	sess, err := h.Auth.IssueSession(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	h.setSessionCookie(c, sess)

	return c.JSON(http.StatusOK, user.Public())
}

// Logout revokes the current session and clears the cookie. Requires a
// valid session, so the guard runs first.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.RevokeSession(ctx, u.SessionID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	h.clearSessionCookie(c)

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user's own record.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, user.Public())
}

// setSessionCookie writes the signed session id. The cookie expires
// together with the session itself; no renewal on activity.
func (h *AuthHandler) setSessionCookie(c echo.Context, sess session.Session) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    h.Signer.Sign(sess.ID),
		Path:     "/",
		Expires:  time.UnixMilli(sess.ExpiresAt),
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

// bearerToken pulls a bearer credential out of the Authorization header.
func bearerToken(c echo.Context) string {
	hdr := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(hdr) > len(prefix) && strings.EqualFold(hdr[:len(prefix)], prefix) {
		return strings.TrimSpace(hdr[len(prefix):])
	}
	return ""
}
