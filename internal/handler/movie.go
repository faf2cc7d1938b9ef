package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rating-api/internal/repository"
	"github.com/iliyamo/movie-rating-api/internal/tmdb"
)

// MovieHandler serves the movie browsing endpoints. All data comes from
// the external metadata provider; the local movies table only exists as
// a mirror for rated movies and is not consulted here.
type MovieHandler struct {
	Provider *tmdb.Client
	Ratings  *repository.RatingRepo
}

func NewMovieHandler(provider *tmdb.Client, ratings *repository.RatingRepo) *MovieHandler {
	return &MovieHandler{Provider: provider, Ratings: ratings}
}

// Search looks a title up on the provider and returns overview cards.
func (h *MovieHandler) Search(c echo.Context) error {
	title := c.Param("title")
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	movies, err := h.Provider.SearchMovies(ctx, title)
	if err != nil {
		c.Logger().Errorf("movie search: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "provider unavailable"})
	}
	return c.JSON(http.StatusOK, movies)
}

// Detail returns the full provider record for one movie together with
// the ratings users have given it here.
func (h *MovieHandler) Detail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	detail, err := h.Provider.MovieDetail(ctx, id)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		c.Logger().Errorf("movie detail: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "provider unavailable"})
	}

	ratings, err := h.Ratings.ListByTMDBID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ratings failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"movie":   detail,
		"ratings": ratings,
	})
}

// Popular proxies the provider's popular listing.
func (h *MovieHandler) Popular(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	movies, err := h.Provider.PopularMovies(ctx)
	if err != nil {
		c.Logger().Errorf("popular movies: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "provider unavailable"})
	}
	return c.JSON(http.StatusOK, movies)
}
