package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rating-api/internal/middleware"
	"github.com/iliyamo/movie-rating-api/internal/queue"
	"github.com/iliyamo/movie-rating-api/internal/repository"
	"github.com/iliyamo/movie-rating-api/internal/tmdb"
)

// RatingHandler serves rating creation, lookup, deletion and likes.
type RatingHandler struct {
	Ratings  *repository.RatingRepo
	Movies   *repository.MovieRepo
	Provider *tmdb.Client
	Events   *queue.Publisher
}

func NewRatingHandler(ratings *repository.RatingRepo, movies *repository.MovieRepo, provider *tmdb.Client, events *queue.Publisher) *RatingHandler {
	return &RatingHandler{Ratings: ratings, Movies: movies, Provider: provider, Events: events}
}

type createRatingReq struct {
	TMDBID     uint64  `json:"tmdbId"`
	Rating     float64 `json:"rating"`
	Commentary string  `json:"commentary"`
}

// validRating accepts half-star steps between 0.5 and 5.0.
func validRating(v float64) bool {
	if v < 0.5 || v > 5.0 {
		return false
	}
	doubled := v * 2
	return doubled == math.Trunc(doubled)
}

// Create rates a movie. The movie is mirrored from the provider into the
// local table the first time anyone rates it; afterwards the local copy
// is reused. One rating per user per movie.
func (h *RatingHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createRatingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TMDBID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tmdbId required"})
	}
	if !validRating(req.Rating) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 0.5 and 5 in half-star steps"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	movie, err := h.mirrorMovie(ctx, req.TMDBID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		c.Logger().Errorf("mirror movie: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "provider unavailable"})
	}

	rt := &repository.Rating{
		UserID:     u.ID,
		MovieID:    movie.ID,
		Rating:     req.Rating,
		Commentary: req.Commentary,
	}
	if err := h.Ratings.Create(ctx, rt); err != nil {
		if errors.Is(err, repository.ErrRatingExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie already rated"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create rating failed"})
	}

	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pcancel()
		_ = h.Events.Publish(pctx, queue.RatingCreatedQueue, queue.RatingCreatedEvent{
			EventID:    uuid.NewString(),
			RatingID:   rt.ID,
			UserID:     u.ID,
			Username:   u.Username,
			TMDBID:     movie.TMDBID,
			MovieTitle: movie.Title,
			Rating:     rt.Rating,
			CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}()

	detail, err := h.Ratings.GetDetail(ctx, rt.ID, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rating failed"})
	}
	return c.JSON(http.StatusCreated, detail)
}

// mirrorMovie returns the local row for a provider movie, fetching and
// inserting it when absent. Losing an insert race is fine: re-read.
func (h *RatingHandler) mirrorMovie(ctx context.Context, tmdbID uint64) (*repository.Movie, error) {
	movie, err := h.Movies.GetByTMDBID(ctx, tmdbID)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, repository.ErrMovieNotFound) {
		return nil, err
	}

	detail, err := h.Provider.MovieDetail(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	genres, err := json.Marshal(detail.Genres)
	if err != nil {
		return nil, err
	}

	m := &repository.Movie{
		TMDBID:     detail.TMDBID,
		Title:      detail.Title,
		PosterPath: detail.PosterPath,
		Year:       detail.Year,
		Duration:   detail.Duration,
		Overview:   detail.Overview,
		Genres:     string(genres),
	}
	if err := h.Movies.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrMovieExists) {
			return h.Movies.GetByTMDBID(ctx, tmdbID)
		}
		return nil, err
	}
	return m, nil
}

// ListForMovie returns every rating a movie has received here, looked up
// by provider id. A movie nobody rated yet (or that was never mirrored)
// yields an empty list, not an error.
func (h *RatingHandler) ListForMovie(c echo.Context) error {
	tmdbID, err := strconv.ParseUint(c.Param("tmdbId"), 10, 64)
	if err != nil || tmdbID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ratings, err := h.Ratings.ListByTMDBID(ctx, tmdbID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ratings failed"})
	}
	return c.JSON(http.StatusOK, ratings)
}

// Get returns the full view of one rating, including whether the caller
// has liked it.
func (h *RatingHandler) Get(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rating id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	detail, err := h.Ratings.GetDetail(ctx, id, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rating not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rating failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// Delete removes the caller's own rating. Deleting somebody else's is
// forbidden.
func (h *RatingHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rating id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt, err := h.Ratings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rating not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rating failed"})
	}
	if rt.UserID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your rating"})
	}

	if err := h.Ratings.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete rating failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "rating deleted"})
}

// Like marks a rating as liked by the caller. Liking twice changes
// nothing and still reports success.
func (h *RatingHandler) Like(c echo.Context) error {
	return h.setLike(c, true)
}

// Unlike removes the caller's like. Removing an absent like is a no-op.
func (h *RatingHandler) Unlike(c echo.Context) error {
	return h.setLike(c, false)
}

func (h *RatingHandler) setLike(c echo.Context, liked bool) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rating id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Verify the rating exists so an idempotent no-op is still a 404 on
	// a bogus id.
	if _, err := h.Ratings.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rating not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rating failed"})
	}

	if liked {
		_, err = h.Ratings.AddLike(ctx, u.ID, id)
	} else {
		_, err = h.Ratings.RemoveLike(ctx, u.ID, id)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update like failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked})
}
