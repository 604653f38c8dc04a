package config

import (
    "os"
    "time"
)

// CacheConfig defines settings for the list cache middleware. When Enabled
// is false or no Redis client is configured, caching is disabled and every
// request reaches the database. TTL bounds how long a cached list may be
// served; writes invalidate earlier than that. Prefix namespaces all keys and
// MaxBodyBytes skips caching of oversized responses.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* environment variables. Defaults are used
// when variables are not set or cannot be parsed.
func LoadCacheConfig() CacheConfig {
    return loadCacheConfig(os.LookupEnv)
}

func loadCacheConfig(lookup func(string) (string, bool)) CacheConfig {
    e := env{lookup: lookup}
    cfg := CacheConfig{
        Enabled:      e.boolOr("CACHE_ENABLED", true),
        TTL:          e.durOr("CACHE_TTL", 60*time.Second),
        Prefix:       e.str("CACHE_PREFIX", "cache"),
        MaxBodyBytes: e.intOr("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 60 * time.Second
    }
    return cfg
}
