package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/notestack/internal/cache"
	"github.com/iliyamo/notestack/internal/config"
	"github.com/iliyamo/notestack/internal/handler"
	"github.com/iliyamo/notestack/internal/middleware"
)

// RegisterBookmarks registers the protected /bookmarks endpoints with the
// same caching rules as notes.
func RegisterBookmarks(api *echo.Group, h *handler.BookmarkHandler, v middleware.Verifier, cc config.CacheConfig, rdb *redis.Client) {
	g := api.Group("/bookmarks", middleware.JWTAuth(v), middleware.InvalidateOnWrite(cc, rdb, cache.Bookmarks))
	cached := middleware.ListCache(cc, rdb, cache.Bookmarks)

	g.GET("", h.List, cached)
	g.GET("/search", h.Search, cached)
	g.GET("/favorites", h.Favorites, cached)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/favorite", h.ToggleFavorite)
	g.POST("/:id/visit", h.Visit)
}
