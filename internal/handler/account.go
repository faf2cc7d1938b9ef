package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rating-api/internal/middleware"
	"github.com/iliyamo/movie-rating-api/internal/repository"
	"github.com/iliyamo/movie-rating-api/internal/storage"
	"github.com/iliyamo/movie-rating-api/internal/tmdb"
)

// maxFavoriteMovies caps the favorite list shown on a profile.
const maxFavoriteMovies = 3

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

// AccountHandler serves the authenticated user's own account: profile,
// rating history, bio, avatar and favorite movies.
type AccountHandler struct {
	Users    *repository.UserRepo
	Ratings  *repository.RatingRepo
	Follows  *repository.FollowRepo
	Provider *tmdb.Client
	Avatars  storage.Uploader
}

func NewAccountHandler(users *repository.UserRepo, ratings *repository.RatingRepo, follows *repository.FollowRepo, provider *tmdb.Client, avatars storage.Uploader) *AccountHandler {
	return &AccountHandler{Users: users, Ratings: ratings, Follows: follows, Provider: provider, Avatars: avatars}
}

// favoriteMovie is one entry of the favorite list persisted as JSON in
// the users table.
type favoriteMovie struct {
	TMDBID     uint64 `json:"tmdb_id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
	Year       int    `json:"year"`
}

type accountProfile struct {
	repository.PublicUser
	FavoriteMovies []favoriteMovie           `json:"favorite_movies"`
	Ratings        []*repository.UserRating  `json:"ratings"`
	Following      []*repository.FollowedUser `json:"following"`
}

// Profile returns the caller's full account view: public fields,
// favorites, rating history and who they follow.
func (h *AccountHandler) Profile(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	ratings, err := h.Ratings.ListByUser(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ratings failed"})
	}
	following, err := h.Follows.ListFollowing(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load follows failed"})
	}

	return c.JSON(http.StatusOK, accountProfile{
		PublicUser:     user.Public(),
		FavoriteMovies: decodeFavorites(user.FavoriteMovies.String),
		Ratings:        ratings,
		Following:      following,
	})
}

// RatingsHistory lists the caller's own ratings, newest first.
func (h *AccountHandler) RatingsHistory(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ratings, err := h.Ratings.ListByUser(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ratings failed"})
	}
	return c.JSON(http.StatusOK, ratings)
}

type updateAccountReq struct {
	GivenName  *string `json:"givenName"`
	FamilyName *string `json:"familyName"`
	Location   *string `json:"location"`
	Website    *string `json:"website"`
	Bio        *string `json:"bio"`
}

// patch validates the request and converts it to a repository patch.
// It returns a human-readable problem string when a field is invalid.
func (req updateAccountReq) patch() (repository.ProfilePatch, string) {
	var p repository.ProfilePatch
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		return &s
	}
	p.GivenName = trim(req.GivenName)
	p.FamilyName = trim(req.FamilyName)
	p.Location = trim(req.Location)
	p.Website = trim(req.Website)
	p.Bio = trim(req.Bio)

	if p.Bio != nil && len(*p.Bio) > 255 {
		return p, "bio too long"
	}
	if p.Website != nil && *p.Website != "" && !validWebsite(*p.Website) {
		return p, "website must be an https URL"
	}
	return p, ""
}

// validWebsite accepts only absolute https URLs with a host.
func validWebsite(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme == "https" && u.Host != ""
}

// Update patches mutable profile fields. Absent fields stay untouched;
// an empty string clears a field.
func (h *AccountHandler) Update(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req updateAccountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.GivenName == nil && req.FamilyName == nil && req.Location == nil &&
		req.Website == nil && req.Bio == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	patch, problem := req.patch()
	if problem != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": problem})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, u.ID, patch); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	user, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, user.Public())
}

// UploadAvatar accepts a PNG or JPEG image in the 'avatar' form field,
// stores it in the object store and saves the resulting URL on the user.
func (h *AccountHandler) UploadAvatar(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	fileHdr, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatar file required"})
	}
	if fileHdr.Size > maxAvatarBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "avatar too large"})
	}

	src, err := fileHdr.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "read avatar failed"})
	}
	defer src.Close()

	body, err := io.ReadAll(io.LimitReader(src, maxAvatarBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "read avatar failed"})
	}
	if len(body) > maxAvatarBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "avatar too large"})
	}

	contentType := http.DetectContentType(body)
	var ext string
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatar must be png or jpeg"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	key := path.Join("avatars", fmt.Sprintf("%d-%s%s", u.ID, uuid.NewString(), ext))
	url, err := h.Avatars.Put(ctx, key, body, contentType)
	if err != nil {
		c.Logger().Errorf("avatar upload: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "store avatar failed"})
	}
	if err := h.Users.SetAvatarPath(ctx, u.ID, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save avatar failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar_image_path": url})
}

type addFavoriteReq struct {
	TMDBID uint64 `json:"tmdbId"`
}

// AddFavorite appends a movie to the favorite list, up to three. The
// movie's display fields are resolved from the provider at add time.
func (h *AccountHandler) AddFavorite(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req addFavoriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TMDBID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tmdbId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	favorites := decodeFavorites(user.FavoriteMovies.String)
	if len(favorites) >= maxFavoriteMovies {
		return c.JSON(http.StatusConflict, echo.Map{"error": "favorite list is full"})
	}
	for _, f := range favorites {
		if f.TMDBID == req.TMDBID {
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie already in favorites"})
		}
	}

	detail, err := h.Provider.MovieDetail(ctx, req.TMDBID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		c.Logger().Errorf("favorite lookup: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "provider unavailable"})
	}

	favorites = append(favorites, favoriteMovie{
		TMDBID:     detail.TMDBID,
		Title:      detail.Title,
		PosterPath: detail.PosterPath,
		Year:       detail.Year,
	})
	if err := h.saveFavorites(ctx, u.ID, favorites); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save favorites failed"})
	}
	return c.JSON(http.StatusOK, favorites)
}

// RemoveFavorite drops the favorite at a 1-based position, passed as the
// 'position' query parameter.
func (h *AccountHandler) RemoveFavorite(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	pos, err := strconv.Atoi(c.QueryParam("position"))
	if err != nil || pos < 1 || pos > maxFavoriteMovies {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	favorites := decodeFavorites(user.FavoriteMovies.String)
	if pos > len(favorites) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no favorite at that position"})
	}

	favorites = append(favorites[:pos-1], favorites[pos:]...)
	if err := h.saveFavorites(ctx, u.ID, favorites); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save favorites failed"})
	}
	return c.JSON(http.StatusOK, favorites)
}

func (h *AccountHandler) saveFavorites(ctx context.Context, userID uint64, favorites []favoriteMovie) error {
	if favorites == nil {
		favorites = []favoriteMovie{}
	}
	encoded, err := json.Marshal(favorites)
	if err != nil {
		return err
	}
	return h.Users.SetFavoriteMovies(ctx, userID, string(encoded))
}

// decodeFavorites tolerates an empty or corrupt column by returning an
// empty list.
func decodeFavorites(raw string) []favoriteMovie {
	if raw == "" {
		return []favoriteMovie{}
	}
	var favorites []favoriteMovie
	if err := json.Unmarshal([]byte(raw), &favorites); err != nil {
		return []favoriteMovie{}
	}
	return favorites
}
