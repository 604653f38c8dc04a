package middleware

// identity.go holds the helpers that move the authenticated user in and
// out of the Echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notestack/internal/model"
)

// userKey is the Echo context key holding the authenticated model.PublicUser.
const userKey = "user"

// SetUser attaches the authenticated user to the request.
func SetUser(c echo.Context, u model.PublicUser) { c.Set(userKey, u) }

// CurrentUser returns the user attached by JWTAuth. ok is false on routes
// that are not protected.
func CurrentUser(c echo.Context) (model.PublicUser, bool) {
	u, ok := c.Get(userKey).(model.PublicUser)
	return u, ok && u.ID != 0
}

// userID returns the authenticated user's id or 0 for guests.
func userID(c echo.Context) uint64 {
	u, _ := CurrentUser(c)
	return u.ID
}
