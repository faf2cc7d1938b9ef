package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Rating mirrors the 'ratings' table. Values run in half-star steps from
// 0.5 to 5.0; one rating per user per movie is enforced by a unique index
// on (user_id, movie_id).
type Rating struct {
	ID         uint64
	UserID     uint64
	MovieID    uint64
	Rating     float64
	Commentary string
	CreatedAt  time.Time
}

// MovieRating is a rating joined with its author, shaped for listing all
// ratings under a movie.
type MovieRating struct {
	ID              uint64  `json:"id"`
	Rating          float64 `json:"rating"`
	Commentary      string  `json:"commentary"`
	Username        string  `json:"username"`
	AvatarImagePath string  `json:"avatar_image_path,omitempty"`
}

// UserRating is a rating joined with its movie, shaped for an account's
// own rating history.
type UserRating struct {
	ID         uint64  `json:"id"`
	Rating     float64 `json:"rating"`
	Commentary string  `json:"commentary"`
	TMDBID     uint64  `json:"tmdb_id"`
	Title      string  `json:"title"`
	PosterPath string  `json:"poster_path"`
}

// RatingDetail is the full single-rating view: author, movie, likes count
// and whether the requesting user is among the likers.
type RatingDetail struct {
	ID              uint64  `json:"id"`
	Rating          float64 `json:"rating"`
	Commentary      string  `json:"commentary"`
	Username        string  `json:"username"`
	AvatarImagePath string  `json:"avatar_image_path,omitempty"`
	TMDBID          uint64  `json:"tmdb_id"`
	Title           string  `json:"title"`
	PosterPath      string  `json:"poster_path"`
	LikesCount      int64   `json:"likes_count"`
	LikedByCaller   bool    `json:"like_from_current_user"`
}

type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Create inserts a rating and populates rt.ID. A duplicate (user, movie)
// pair surfaces as ErrRatingExists.
func (r *RatingRepo) Create(ctx context.Context, rt *Rating) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO ratings (user_id, movie_id, rating, commentary) VALUES (?,?,?,?)",
		rt.UserID, rt.MovieID, rt.Rating, rt.Commentary)
	if err != nil {
		if isDuplicate(err) {
			return ErrRatingExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

// GetByID fetches a bare rating row.
func (r *RatingRepo) GetByID(ctx context.Context, id uint64) (*Rating, error) {
	var rt Rating
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,movie_id,rating,commentary,created_at FROM ratings WHERE id=? LIMIT 1",
		id).Scan(&rt.ID, &rt.UserID, &rt.MovieID, &rt.Rating, &rt.Commentary, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// GetDetail fetches the full rating view, including whether callerID has
// liked it.
func (r *RatingRepo) GetDetail(ctx context.Context, id, callerID uint64) (*RatingDetail, error) {
	const q = `SELECT r.id, r.rating, r.commentary,
	                  u.username, COALESCE(u.avatar_image_path, ''),
	                  m.tmdb_id, m.title, m.poster_path,
	                  (SELECT COUNT(*) FROM rating_likes rl WHERE rl.rating_id = r.id),
	                  EXISTS(SELECT 1 FROM rating_likes rl WHERE rl.rating_id = r.id AND rl.user_id = ?)
	           FROM ratings r
	           JOIN users u ON u.id = r.user_id
	           JOIN movies m ON m.id = r.movie_id
	           WHERE r.id = ? LIMIT 1`
	var d RatingDetail
	err := r.DB.QueryRowContext(ctx, q, callerID, id).Scan(
		&d.ID, &d.Rating, &d.Commentary,
		&d.Username, &d.AvatarImagePath,
		&d.TMDBID, &d.Title, &d.PosterPath,
		&d.LikesCount, &d.LikedByCaller)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByTMDBID returns all ratings given to a movie, identified by the
// provider id so unmirrored movies simply yield an empty list.
func (r *RatingRepo) ListByTMDBID(ctx context.Context, tmdbID uint64) ([]*MovieRating, error) {
	const q = `SELECT r.id, r.rating, r.commentary, u.username, COALESCE(u.avatar_image_path, '')
	           FROM ratings r
	           JOIN users u ON u.id = r.user_id
	           JOIN movies m ON m.id = r.movie_id
	           WHERE m.tmdb_id = ? ORDER BY r.id DESC`
	rows, err := r.DB.QueryContext(ctx, q, tmdbID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*MovieRating, 0)
	for rows.Next() {
		var mr MovieRating
		if err := rows.Scan(&mr.ID, &mr.Rating, &mr.Commentary, &mr.Username, &mr.AvatarImagePath); err != nil {
			return nil, err
		}
		items = append(items, &mr)
	}
	return items, rows.Err()
}

// ListByUser returns all ratings an account has given, newest first.
func (r *RatingRepo) ListByUser(ctx context.Context, userID uint64) ([]*UserRating, error) {
	const q = `SELECT r.id, r.rating, r.commentary, m.tmdb_id, m.title, m.poster_path
	           FROM ratings r
	           JOIN movies m ON m.id = r.movie_id
	           WHERE r.user_id = ? ORDER BY r.id DESC`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*UserRating, 0)
	for rows.Next() {
		var ur UserRating
		if err := rows.Scan(&ur.ID, &ur.Rating, &ur.Commentary, &ur.TMDBID, &ur.Title, &ur.PosterPath); err != nil {
			return nil, err
		}
		items = append(items, &ur)
	}
	return items, rows.Err()
}

// Delete removes a rating together with its likes in one transaction.
func (r *RatingRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM rating_likes WHERE rating_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM ratings WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddLike records that a user liked a rating. Re-liking is a no-op; the
// returned bool reports whether a new like row was written.
func (r *RatingRepo) AddLike(ctx context.Context, userID, ratingID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO rating_likes (user_id, rating_id) VALUES (?,?)",
		userID, ratingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveLike deletes a like. Removing an absent like is a no-op; the
// returned bool reports whether a row was actually deleted.
func (r *RatingRepo) RemoveLike(ctx context.Context, userID, ratingID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM rating_likes WHERE user_id=? AND rating_id=?",
		userID, ratingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
