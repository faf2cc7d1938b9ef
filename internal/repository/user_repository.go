package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// User mirrors the 'users' table. PasswordHash never leaves the auth layer;
// handlers respond with the Public() projection instead.
type User struct {
	ID              uint64
	Username        string
	Email           string
	PasswordHash    string
	EmailValidated  bool
	GivenName       sql.NullString
	FamilyName      sql.NullString
	Location        sql.NullString
	Website         sql.NullString
	Bio             sql.NullString
	AvatarImagePath sql.NullString
	FavoriteMovies  sql.NullString // JSON array of up to three movie summaries
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PublicUser is the JSON projection of a user that is safe to return to
// clients: no password hash, nullable columns flattened to plain values.
type PublicUser struct {
	ID              uint64 `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	EmailValidated  bool   `json:"email_validated"`
	GivenName       string `json:"given_name,omitempty"`
	FamilyName      string `json:"family_name,omitempty"`
	Location        string `json:"location,omitempty"`
	Website         string `json:"website,omitempty"`
	Bio             string `json:"bio,omitempty"`
	AvatarImagePath string `json:"avatar_image_path,omitempty"`
}

// Public strips credentials and flattens nullable columns.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		EmailValidated:  u.EmailValidated,
		GivenName:       u.GivenName.String,
		FamilyName:      u.FamilyName.String,
		Location:        u.Location.String,
		Website:         u.Website.String,
		Bio:             u.Bio.String,
		AvatarImagePath: u.AvatarImagePath.String,
	}
}

const userColumns = "id,username,email,password_hash,email_validated," +
	"given_name,family_name,location,website,bio,avatar_image_path,favorite_movies,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.EmailValidated,
		&u.GivenName, &u.FamilyName, &u.Location, &u.Website,
		&u.Bio, &u.AvatarImagePath, &u.FavoriteMovies, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and returns its ID. Email is stored normalized.
// A duplicate username or email surfaces as ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string, emailValidated bool) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, email_validated) VALUES (?,?,?,?)",
		username, email, passwordHash, emailValidated)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// ProfilePatch carries the optional account fields a user may update.
// Nil pointers are left untouched; empty strings clear the column.
type ProfilePatch struct {
	GivenName  *string
	FamilyName *string
	Location   *string
	Website    *string
	Bio        *string
}

// assignments renders the patch as SQL SET clauses plus their arguments,
// in a fixed column order.
func (p ProfilePatch) assignments() ([]string, []any) {
	var cols []string
	var args []any
	add := func(col string, v *string) {
		if v != nil {
			cols = append(cols, col+"=?")
			args = append(args, *v)
		}
	}
	add("given_name", p.GivenName)
	add("family_name", p.FamilyName)
	add("location", p.Location)
	add("website", p.Website)
	add("bio", p.Bio)
	return cols, args
}

// UpdateProfile patches the set fields of a user's profile. A patch with
// no fields set is a no-op.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, patch ProfilePatch) error {
	cols, args := patch.assignments()
	if len(cols) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(cols, ", ")+" WHERE id=?", args...)
	return err
}

// SetAvatarPath stores the blob-store URL of the user's avatar.
func (r *UserRepo) SetAvatarPath(ctx context.Context, id uint64, path string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET avatar_image_path=? WHERE id=?", path, id)
	return err
}

// SetFavoriteMovies replaces the favorite-movies JSON array.
func (r *UserRepo) SetFavoriteMovies(ctx context.Context, id uint64, moviesJSON string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET favorite_movies=? WHERE id=?", moviesJSON, id)
	return err
}
