// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: for
// example, ErrUserExists indicates a registration conflict on a unique
// column, while the NotFound values map to HTTP 404 responses.
package repository

import (
	"errors"
	"strings"
)

// ErrUserExists is returned when an insert collides with an existing
// username or email. Handlers translate this into an HTTP 409 response.
var ErrUserExists = errors.New("username or email already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrMovieNotFound is returned when a movie lookup matches no row.
var ErrMovieNotFound = errors.New("movie not found")

// ErrRatingNotFound is returned when a rating lookup matches no row.
var ErrRatingNotFound = errors.New("rating not found")

// ErrRatingExists is returned when a user already rated a movie.
// One rating per user per movie is enforced by a unique index.
var ErrRatingExists = errors.New("rating already exists")

// isDuplicate reports whether a MySQL error is a duplicate-key violation
// (error 1062) without depending on the driver's error type.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
