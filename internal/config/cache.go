package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig drives the Redis response cache sitting on the movie
// detail and popular endpoints.  Those responses come from the external
// metadata provider and change slowly, so they are the only routes worth
// caching.  When Enabled is false or no Redis client is configured the
// middleware becomes a pass-through.  Methods lists the HTTP methods to
// cache, TTL the entry lifetime, KeyStrategy which request parts form
// the key, and Prefix/MaxBodyBytes control namespacing and the largest
// response stored.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults suit the provider proxies: GET only, five minutes per entry.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("CACHE_TTL", "5m")),
        KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       getenv("CACHE_PREFIX", "cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.ToUpper(strings.TrimSpace(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

// getenv returns the value of an environment variable or a default.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    n, err := strconv.Atoi(s)
    if err != nil {
        return 0
    }
    return n
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return 0
    }
    return d
}
