package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notestack/internal/handler"
	"github.com/iliyamo/notestack/internal/middleware"
)

// APIPrefix is the base path of every versioned endpoint.
const APIPrefix = "/api/v1"

// RegisterRoutes registers routes that do not require authentication and
// live outside the versioned API.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring.
	e.GET("/healthz", handler.Health)
}

// RegisterUsers registers the account and session endpoints under
// /api/v1/users. Register, login and refresh are public; logout and me need
// a valid access token.
func RegisterUsers(api *echo.Group, a *handler.AuthHandler, v middleware.Verifier) {
	g := api.Group("/users")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token; the previous one stops working.
	g.POST("/refresh-token", a.Refresh)

	auth := middleware.JWTAuth(v)
	g.POST("/logout", a.Logout, auth)
	g.GET("/me", a.Me, auth)
}
