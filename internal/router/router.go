package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/movie-rating-api/internal/handler" // import the handlers that implement business logic
)

// Handlers bundles every handler the route table needs so main only
// passes one value.
type Handlers struct {
	Auth    *handler.AuthHandler
	Movies  *handler.MovieHandler
	Ratings *handler.RatingHandler
	Follows *handler.FollowHandler
	Account *handler.AccountHandler
	Profile *handler.ProfileHandler
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAPI wires the whole /v1 surface.  Unauthenticated registration
// and login operations live under /v1/auth; everything else requires a
// valid session cookie and runs behind the session guard.  The limiter
// covers the auth endpoints to slow down credential stuffing, and the
// response cache sits on the read-heavy provider proxies.
func RegisterAPI(e *echo.Echo, h Handlers, guard, limiter, cache echo.MiddlewareFunc) {
	// Registration and login do not carry a session yet.  The token bucket
	// limiter is applied here because these are the endpoints worth brute
	// forcing.
	g := e.Group("/v1/auth", limiter)
	// Start registration: store a verification code and email a link.
	g.POST("/register/email", h.Auth.RegisterEmail)
	// Exchange a verification code for a short-lived signup token.
	g.GET("/register/verify/:code", h.Auth.VerifyEmail)
	// Finish registration with the signup token as bearer credential.
	g.POST("/signup", h.Auth.Signup)
	// Log in with email or username plus password.
	g.POST("/login", h.Auth.Login)
	// Logout needs the session it is revoking, so the guard runs on it.
	g.DELETE("/logout", h.Auth.Logout, guard)

	// Everything below requires a valid session cookie.
	auth := e.Group("/v1", guard)
	// The authenticated user's identity.
	auth.GET("/me", h.Auth.Me)

	// Movie browsing, proxied from the metadata provider.  Detail and
	// popular responses are cached; search results change with every query
	// so they go straight through.
	auth.GET("/movies/search/:title", h.Movies.Search)
	auth.GET("/movies/:id/detail", h.Movies.Detail, cache)
	auth.GET("/movies/popular", h.Movies.Popular, cache)

	// Ratings and their likes.
	auth.POST("/ratings", h.Ratings.Create)
	auth.GET("/ratings/movie/:tmdbId", h.Ratings.ListForMovie)
	auth.GET("/ratings/:id", h.Ratings.Get)
	auth.DELETE("/ratings/:id", h.Ratings.Delete)
	auth.POST("/ratings/:id/like", h.Ratings.Like)
	auth.DELETE("/ratings/:id/like", h.Ratings.Unlike)

	// The follow graph.
	auth.GET("/follows/following", h.Follows.Following)
	auth.POST("/follows/user/:id", h.Follows.Follow)
	auth.DELETE("/follows/user/:id", h.Follows.Unfollow)

	// The caller's own account.
	auth.GET("/account/profile", h.Account.Profile)
	auth.GET("/account/ratings", h.Account.RatingsHistory)
	auth.PATCH("/account", h.Account.Update)
	auth.POST("/account/avatar", h.Account.UploadAvatar)
	auth.PATCH("/account/favorite-movie", h.Account.AddFavorite)
	auth.DELETE("/account/favorite-movie", h.Account.RemoveFavorite)

	// Other users' public profiles.
	auth.GET("/profiles/:username", h.Profile.Get)
}
