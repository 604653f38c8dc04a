package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/notestack/internal/config"
	"github.com/iliyamo/notestack/internal/handler"
	"github.com/iliyamo/notestack/internal/middleware"
	"github.com/iliyamo/notestack/internal/service"
)

// Deps is everything New needs to build the HTTP server.
type Deps struct {
	Cfg       config.Config
	Cache     config.CacheConfig
	Redis     *redis.Client // optional
	Auth      *service.AuthService
	Notes     *service.NoteService
	Bookmarks *service.BookmarkService
}

// New builds the Echo instance with the global middleware chain, the
// structured error handler and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{d.Cfg.ClientURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	bodyLimit := d.Cfg.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "16K"
	}
	e.Use(echomw.BodyLimit(bodyLimit))

	RegisterRoutes(e)
	api := e.Group(APIPrefix)
	RegisterUsers(api, handler.NewAuthHandler(d.Cfg, d.Auth), d.Auth)
	RegisterNotes(api, handler.NewNoteHandler(d.Notes), d.Auth, d.Cache, d.Redis)
	RegisterBookmarks(api, handler.NewBookmarkHandler(d.Bookmarks), d.Auth, d.Cache, d.Redis)
	return e
}
