package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/notestack/internal/model"
)

// AccessCookie is the cookie that carries the access token for browser clients.
const AccessCookie = "accessToken"

// Verifier turns a raw access token into the current user. Errors are
// *apperr.Error values and are rendered by the HTTP error handler.
type Verifier interface {
    Verify(ctx context.Context, raw string) (model.PublicUser, error)
}

// JWTAuth returns an Echo middleware that authenticates the request and
// attaches the user to the context. The Authorization header wins over the
// cookie when both are present. On failure the error is returned and no
// downstream handler runs.
func JWTAuth(v Verifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            u, err := v.Verify(c.Request().Context(), extractToken(c))
            if err != nil {
                return err
            }
            SetUser(c, u)
            return next(c)
        }
    }
}

// extractToken reads "Authorization: Bearer <t>" when the header is set and
// the access cookie only when it is absent. An empty string means no token
// was presented.
func extractToken(c echo.Context) string {
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if auth != "" {
        if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
            return strings.TrimSpace(auth[7:])
        }
        return ""
    }
    if ck, err := c.Cookie(AccessCookie); err == nil {
        return strings.TrimSpace(ck.Value)
    }
    return ""
}
