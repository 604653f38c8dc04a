// Package cache tracks per-user generation counters for cached list
// responses. Cache keys embed the current generation, so bumping it makes
// every older entry of that user and resource unreachable at once; the
// stale entries then expire on their own TTL.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Resource names used in keys.
const (
	Notes     = "notes"
	Bookmarks = "bookmarks"
)

// Generations reads and bumps generation counters in Redis.
type Generations struct {
	rdb    redis.Cmdable
	prefix string
}

func NewGenerations(rdb redis.Cmdable, prefix string) *Generations {
	if prefix == "" {
		prefix = "cache"
	}
	return &Generations{rdb: rdb, prefix: prefix}
}

func (g *Generations) key(userID uint64, resource string) string {
	return fmt.Sprintf("%s:gen:%s:%d", g.prefix, resource, userID)
}

// Current returns the generation for the user and resource, 0 if never bumped.
func (g *Generations) Current(ctx context.Context, userID uint64, resource string) (int64, error) {
	n, err := g.rdb.Get(ctx, g.key(userID, resource)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump invalidates every cached list of the user for the resource.
func (g *Generations) Bump(ctx context.Context, userID uint64, resource string) error {
	return g.rdb.Incr(ctx, g.key(userID, resource)).Err()
}

// EntryKey builds the key of one cached response. digest identifies the
// request (route and query).
func (g *Generations) EntryKey(userID uint64, resource string, gen int64, digest string) string {
	return fmt.Sprintf("%s:%s:%d:%d:%s", g.prefix, resource, userID, gen, digest)
}
