// Package auth is the only place raw credentials are turned into verified
// identities. Handlers never touch password hashes; they hand
// email-or-username plus plaintext to this service and get back either a
// user or a uniform nil.
package auth

import (
	"context"
	"errors"
	"net/mail"

	"github.com/iliyamo/movie-rating-api/internal/repository"
	"github.com/iliyamo/movie-rating-api/internal/session"
	"github.com/iliyamo/movie-rating-api/internal/utils"
)

// UserStore is the slice of the user repository the service needs.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string, emailValidated bool) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
	GetByUsername(ctx context.Context, username string) (*repository.User, error)
	GetByID(ctx context.Context, id uint64) (*repository.User, error)
}

// Service verifies credentials, registers users and drives the session
// lifecycle through the session manager.
type Service struct {
	users      UserStore
	sessions   *session.Manager
	bcryptCost int
}

// New builds the service. bcryptCost comes from config; sessions own their
// fixed lifetime.
func New(users UserStore, sessions *session.Manager, bcryptCost int) *Service {
	return &Service{users: users, sessions: sessions, bcryptCost: bcryptCost}
}

// Register hashes the password and persists a new user. A colliding
// username or email surfaces as repository.ErrUserExists; the plaintext is
// neither stored nor returned.
func (s *Service) Register(ctx context.Context, username, email, plaintext string, emailValidated bool) (*repository.User, error) {
	hash, err := utils.HashPassword(plaintext, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	id, err := s.users.Create(ctx, username, email, hash, emailValidated)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// ResolveIdentity looks a user up by email when the input parses as an
// email address, otherwise by username. Email-shaped input is always an
// email lookup even if some user has that string as a username; there is
// no fallback chain.
func (s *Service) ResolveIdentity(ctx context.Context, emailOrUsername string) (*repository.User, error) {
	if isEmail(emailOrUsername) {
		return s.users.GetByEmail(ctx, emailOrUsername)
	}
	return s.users.GetByUsername(ctx, emailOrUsername)
}

// VerifyCredentials resolves the identity and checks the password. Unknown
// identity and wrong password both return (nil, nil) so callers produce
// one indistinguishable "invalid credentials" response. Store failures are
// returned as errors.
func (s *Service) VerifyCredentials(ctx context.Context, emailOrUsername, plaintext string) (*repository.User, error) {
	u, err := s.ResolveIdentity(ctx, emailOrUsername)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, plaintext) {
		return nil, nil
	}
	return u, nil
}

// IssueSession creates a session for an already-verified user id.
func (s *Service) IssueSession(ctx context.Context, userID uint64) (session.Session, error) {
	return s.sessions.Create(ctx, userID)
}

// RevokeSession deletes a session. Idempotent: revoking an id that does
// not exist is not an error.
func (s *Service) RevokeSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// isEmail reports whether the input is a bare, valid email address.
// mail.ParseAddress also accepts "Name <a@b>" forms; those are rejected
// so only the plain address shape routes to the email lookup.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
