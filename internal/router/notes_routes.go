package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/notestack/internal/cache"
	"github.com/iliyamo/notestack/internal/config"
	"github.com/iliyamo/notestack/internal/handler"
	"github.com/iliyamo/notestack/internal/middleware"
)

// RegisterNotes registers the protected /notes endpoints. List reads go
// through the per-user Redis cache and every write invalidates it. rdb may
// be nil, which disables caching.
func RegisterNotes(api *echo.Group, h *handler.NoteHandler, v middleware.Verifier, cc config.CacheConfig, rdb *redis.Client) {
	g := api.Group("/notes", middleware.JWTAuth(v), middleware.InvalidateOnWrite(cc, rdb, cache.Notes))
	cached := middleware.ListCache(cc, rdb, cache.Notes)

	g.GET("", h.List, cached)
	g.GET("/search", h.Search, cached)
	g.GET("/favorites", h.Favorites, cached)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/favorite", h.ToggleFavorite)
}
