package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rating-api/internal/middleware"
	"github.com/iliyamo/movie-rating-api/internal/repository"
)

// FollowHandler serves the follow graph endpoints.
type FollowHandler struct {
	Follows *repository.FollowRepo
	Users   *repository.UserRepo
}

func NewFollowHandler(follows *repository.FollowRepo, users *repository.UserRepo) *FollowHandler {
	return &FollowHandler{Follows: follows, Users: users}
}

// Follow makes the caller follow the user with the given id. Following
// yourself is rejected; following someone you already follow succeeds
// unchanged.
func (h *FollowHandler) Follow(c echo.Context) error {
	return h.setFollow(c, true)
}

// Unfollow removes a follow edge. Unfollowing someone you never
// followed still succeeds.
func (h *FollowHandler) Unfollow(c echo.Context) error {
	return h.setFollow(c, false)
}

func (h *FollowHandler) setFollow(c echo.Context, follow bool) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if targetID == u.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot follow yourself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	var changed bool
	if follow {
		changed, err = h.Follows.Create(ctx, u.ID, target.ID)
	} else {
		changed, err = h.Follows.Delete(ctx, u.ID, target.ID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update follow failed"})
	}

	msg := "nothing to do"
	switch {
	case follow && changed:
		msg = "now following " + target.Username
	case !follow && changed:
		msg = "unfollowed " + target.Username
	}
	return c.JSON(http.StatusOK, echo.Map{"following": follow, "message": msg})
}

// Following lists the users the caller follows, oldest follow first.
func (h *FollowHandler) Following(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Follows.ListFollowing(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list follows failed"})
	}
	return c.JSON(http.StatusOK, users)
}
