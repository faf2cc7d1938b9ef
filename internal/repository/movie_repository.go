package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Movie mirrors the 'movies' table: a local copy of a record from the
// external metadata provider, inserted lazily the first time somebody
// rates the movie. tmdb_id is unique; the provider remains the source of
// truth for everything except our ratings.
type Movie struct {
	ID         uint64 `json:"-"`
	TMDBID     uint64 `json:"tmdb_id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
	Year       int    `json:"year"`
	Duration   int    `json:"duration"`
	Overview   string `json:"overview"`
	Genres     string `json:"genres"` // JSON array of genre names
}

type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieColumns = "id,tmdb_id,title,poster_path,year,duration,overview,genres"

func scanMovie(row *sql.Row) (*Movie, error) {
	var m Movie
	err := row.Scan(&m.ID, &m.TMDBID, &m.Title, &m.PosterPath, &m.Year,
		&m.Duration, &m.Overview, &m.Genres)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByTMDBID fetches the local copy of a movie by its provider id.
func (r *MovieRepo) GetByTMDBID(ctx context.Context, tmdbID uint64) (*Movie, error) {
	return scanMovie(r.DB.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE tmdb_id=? LIMIT 1", tmdbID))
}

// Create inserts a movie mirrored from the provider and populates m.ID.
// Two concurrent inserts of the same tmdb_id are expected occasionally;
// the loser sees the duplicate error and should re-read with GetByTMDBID.
func (r *MovieRepo) Create(ctx context.Context, m *Movie) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO movies (tmdb_id, title, poster_path, year, duration, overview, genres) VALUES (?,?,?,?,?,?,?)",
		m.TMDBID, m.Title, m.PosterPath, m.Year, m.Duration, m.Overview, m.Genres)
	if err != nil {
		if isDuplicate(err) {
			return ErrMovieExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ErrMovieExists signals a concurrent mirror insert of the same tmdb_id.
var ErrMovieExists = errors.New("movie already exists")
