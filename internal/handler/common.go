package handler // handler defines http handlers

import (
    "context"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/notestack/internal/apperr"
    "github.com/iliyamo/notestack/internal/middleware"
)

// dbTimeout bounds the database work of a single request.
const dbTimeout = 5 * time.Second

// withTimeout derives the per-request database context.
func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID returns the id of the user attached by the auth middleware.
func getUserID(c echo.Context) (uint64, error) {
    u, ok := middleware.CurrentUser(c)
    if !ok {
        return 0, apperr.Authentication("Unauthorized request")
    }
    return u.ID, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
    if err != nil || id == 0 {
        return 0, apperr.Validation("Invalid id")
    }
    return id, nil
}

// bind decodes the request body, mapping decode failures to a validation error.
func bind(c echo.Context, v any) error {
    if err := c.Bind(v); err != nil {
        return apperr.Validation("Invalid request body")
    }
    return nil
}

// ownerAndID combines getUserID and pathID for item routes.
func ownerAndID(c echo.Context) (uint64, uint64, error) {
    uid, err := getUserID(c)
    if err != nil {
        return 0, 0, err
    }
    id, err := pathID(c)
    if err != nil {
        return 0, 0, err
    }
    return uid, id, nil
}
