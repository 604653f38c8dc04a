package config

// Redis backs the per-user list cache. The client parameters are loaded from
// environment variables. If the server cannot be reached at startup the
// constructor returns nil and callers run without a cache.

import (
    "context"
    "crypto/tls"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from environment variables:
//   REDIS_ADDR – host:port shorthand
//   REDIS_HOST and REDIS_PORT – take precedence over REDIS_ADDR when both set
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
func RedisOptions(lookup func(string) (string, bool)) *redis.Options {
    e := env{lookup: lookup}
    addr := e.str("REDIS_ADDR", "localhost:6379")
    if host, port := e.get("REDIS_HOST"), e.get("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: e.get("REDIS_PASSWORD"),
        DB:       e.intOr("REDIS_DB", 0),
    }
    if e.boolOr("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts
}

// NewRedisClient connects with RedisOptions and pings the server with a short
// timeout. The returned client is nil if the server is unreachable.
func NewRedisClient() *redis.Client {
    client := redis.NewClient(RedisOptions(os.LookupEnv))
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
