// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into the activity log.
package queue

const (
	// UserRegisteredQueue receives one message per completed signup.
	UserRegisteredQueue = "user.registered"
	// RatingCreatedQueue receives one message per rating created.
	RatingCreatedQueue = "rating.created"
)

// UserRegisteredEvent is published when a signup completes. It carries
// enough for downstream consumers to log or notify without querying the
// primary database.
type UserRegisteredEvent struct {
	EventID      string `json:"event_id"`
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registered_at"`
}

// RatingCreatedEvent is published when a user rates a movie.
type RatingCreatedEvent struct {
	EventID    string  `json:"event_id"`
	RatingID   uint64  `json:"rating_id"`
	UserID     uint64  `json:"user_id"`
	Username   string  `json:"username"`
	TMDBID     uint64  `json:"tmdb_id"`
	MovieTitle string  `json:"movie_title"`
	Rating     float64 `json:"rating"`
	CreatedAt  string  `json:"created_at"`
}
