package repository

import (
	"context"
	"database/sql"
)

// FollowedUser is the projection returned when listing who an account
// follows.
type FollowedUser struct {
	ID              uint64 `json:"id"`
	Username        string `json:"username"`
	AvatarImagePath string `json:"avatar_image_path,omitempty"`
}

// FollowRepo persists the follower/following relation. The pair
// (follower_id, following_id) is the primary key, so duplicates are
// impossible at the storage level.
type FollowRepo struct{ DB *sql.DB }

func NewFollowRepo(db *sql.DB) *FollowRepo { return &FollowRepo{DB: db} }

// Create records that follower follows following. Creating an existing
// relation is a no-op; the returned bool reports whether a row was written.
func (r *FollowRepo) Create(ctx context.Context, followerID, followingID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_follows (follower_id, following_id) VALUES (?,?)",
		followerID, followingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a follow relation. Deleting an absent relation is a
// no-op; the returned bool reports whether a row was deleted.
func (r *FollowRepo) Delete(ctx context.Context, followerID, followingID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_follows WHERE follower_id=? AND following_id=?",
		followerID, followingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Exists reports whether follower follows following.
func (r *FollowRepo) Exists(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM user_follows WHERE follower_id=? AND following_id=? LIMIT 1",
		followerID, followingID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListFollowing returns the users an account follows, ordered by the time
// the relation was created.
func (r *FollowRepo) ListFollowing(ctx context.Context, followerID uint64) ([]*FollowedUser, error) {
	const q = `SELECT u.id, u.username, COALESCE(u.avatar_image_path, '')
	           FROM user_follows f
	           JOIN users u ON u.id = f.following_id
	           WHERE f.follower_id = ? ORDER BY f.created_at`
	rows, err := r.DB.QueryContext(ctx, q, followerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*FollowedUser, 0)
	for rows.Next() {
		var fu FollowedUser
		if err := rows.Scan(&fu.ID, &fu.Username, &fu.AvatarImagePath); err != nil {
			return nil, err
		}
		items = append(items, &fu)
	}
	return items, rows.Err()
}
