package config

// This file defines a Redis client constructor for the application.  Redis is
// the key-value store backing sessions and pending email verifications, and
// it also powers distributed rate limiting and HTTP response caching.  If the
// connection fails during startup the function returns nil; session-backed
// routes cannot work without it, so main treats a nil client as fatal while
// the rate-limit and cache middlewares simply disable themselves.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from the loaded configuration.
// The returned client may be nil if a connection cannot be established.
func NewRedisClient(cfg Config) *redis.Client {
    var tlsConf *tls.Config
    if cfg.RedisTLS {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.RedisAddr,
        Password:  cfg.RedisPassword,
        DB:        cfg.RedisDB,
        TLSConfig: tlsConf,
    })
    // Ping the server with a short timeout.  Return nil on failure.
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
