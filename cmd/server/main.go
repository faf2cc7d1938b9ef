package main // Entry point package

import (
	"context" // context for the S3 client bootstrap
	"log"     // Logging library
	"time"    // session lifetime arithmetic

	"github.com/joho/godotenv"        // loads .env files in development
	"github.com/labstack/echo/v4"     // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's built-in middleware

	"github.com/iliyamo/movie-rating-api/internal/auth"       // credential verification and session issuance
	"github.com/iliyamo/movie-rating-api/internal/config"     // Internal config loader
	"github.com/iliyamo/movie-rating-api/internal/database"   // MySQL connection
	"github.com/iliyamo/movie-rating-api/internal/email"      // transactional email client
	"github.com/iliyamo/movie-rating-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/movie-rating-api/internal/middleware" // session guard, rate limit, cache
	"github.com/iliyamo/movie-rating-api/internal/otp"        // email verification codes
	"github.com/iliyamo/movie-rating-api/internal/queue"      // activity event publisher and consumer
	"github.com/iliyamo/movie-rating-api/internal/repository" // DB repositories
	"github.com/iliyamo/movie-rating-api/internal/router"     // Internal router setup
	"github.com/iliyamo/movie-rating-api/internal/session"    // session store and manager
	"github.com/iliyamo/movie-rating-api/internal/storage"    // avatar object storage
	"github.com/iliyamo/movie-rating-api/internal/tmdb"       // movie metadata provider
	"github.com/iliyamo/movie-rating-api/internal/utils"      // cookie signing
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env vars win
	cfg := config.Load() // Load environment config

	// MySQL holds users, movies, ratings and follows.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis holds sessions and verification codes; without it nobody can
	// log in, so failing to reach it is fatal.
	rdb := config.NewRedisClient(cfg)
	if rdb == nil {
		log.Fatal("redis connect failed")
	}

	// Repositories over the MySQL tables.
	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	ratings := repository.NewRatingRepo(db)
	follows := repository.NewFollowRepo(db)

	// Sessions live in Redis for their configured lifetime; no renewal.
	lifetime := time.Duration(cfg.SessionTTLDays) * 24 * time.Hour
	sessions := session.NewManager(session.NewRedisStore(rdb), lifetime)
	authSvc := auth.New(users, sessions, cfg.BcryptCost)

	// Outbound clients.
	codes := otp.NewStore(rdb)
	mailer := email.New(cfg.EmailAPIBase, cfg.EmailAPIKey, cfg.EmailSenderName, cfg.EmailSenderAddr)
	provider := tmdb.New(cfg.TMDBBaseURL, cfg.TMDBAPIKey)

	avatars, err := storage.NewS3Store(context.Background(), cfg)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// The activity consumer appends registration and rating events to a
	// log file; it reconnects on its own so a broker outage never takes
	// the API down with it.
	events := queue.NewPublisher(cfg.AMQPURL)
	go func() {
		if err := queue.StartActivityConsumer(cfg.AMQPURL); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	e := echo.New()          // Create Echo instance
	e.Use(echomw.Logger())   // request logging
	e.Use(echomw.Recover())  // panic recovery
	router.RegisterRoutes(e) // Register health route

	signer := utils.NewCookieSigner(cfg.CookieSecret)
	guard := middleware.SessionAuth(signer, sessions, users)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterAPI(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, authSvc, users, codes, mailer, events),
		Movies:  handler.NewMovieHandler(provider, ratings),
		Ratings: handler.NewRatingHandler(ratings, movies, provider, events),
		Follows: handler.NewFollowHandler(follows, users),
		Account: handler.NewAccountHandler(users, ratings, follows, provider, avatars),
		Profile: handler.NewProfileHandler(users, ratings, follows),
	}, guard, limiter, cache)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
