package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rating-api/internal/middleware"
	"github.com/iliyamo/movie-rating-api/internal/repository"
)

// ProfileHandler serves other users' public profiles.
type ProfileHandler struct {
	Users   *repository.UserRepo
	Ratings *repository.RatingRepo
	Follows *repository.FollowRepo
}

func NewProfileHandler(users *repository.UserRepo, ratings *repository.RatingRepo, follows *repository.FollowRepo) *ProfileHandler {
	return &ProfileHandler{Users: users, Ratings: ratings, Follows: follows}
}

type publicProfile struct {
	Username        string                   `json:"username"`
	GivenName       string                   `json:"given_name,omitempty"`
	FamilyName      string                   `json:"family_name,omitempty"`
	Location        string                   `json:"location,omitempty"`
	Website         string                   `json:"website,omitempty"`
	Bio             string                   `json:"bio,omitempty"`
	AvatarImagePath string                   `json:"avatar_image_path,omitempty"`
	FavoriteMovies  []favoriteMovie          `json:"favorite_movies"`
	Ratings         []*repository.UserRating `json:"ratings"`
	FollowedByMe    bool                     `json:"followed_by_me"`
	FollowsMe       bool                     `json:"follows_me"`
}

// Get returns a user's public profile with both follow directions
// relative to the caller. A request for your own username redirects to
// the account view so the richer private shape is used.
func (h *ProfileHandler) Get(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	username := c.Param("username")
	if username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	}
	if username == u.Username {
		return c.Redirect(http.StatusTemporaryRedirect, "/v1/account/profile")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	target, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	ratings, err := h.Ratings.ListByUser(ctx, target.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ratings failed"})
	}
	followedByMe, err := h.Follows.Exists(ctx, u.ID, target.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load follows failed"})
	}
	followsMe, err := h.Follows.Exists(ctx, target.ID, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load follows failed"})
	}

	return c.JSON(http.StatusOK, publicProfile{
		Username:        target.Username,
		GivenName:       target.GivenName.String,
		FamilyName:      target.FamilyName.String,
		Location:        target.Location.String,
		Website:         target.Website.String,
		Bio:             target.Bio.String,
		AvatarImagePath: target.AvatarImagePath.String,
		FavoriteMovies:  decodeFavorites(target.FavoriteMovies.String),
		Ratings:         ratings,
		FollowedByMe:    followedByMe,
		FollowsMe:       followsMe,
	})
}
