package handler

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/notestack/internal/apperr"
)

// apiResponse is the success envelope shared by every endpoint.
type apiResponse struct {
    StatusCode int    `json:"statusCode"`
    Data       any    `json:"data"`
    Message    string `json:"message"`
    Success    bool   `json:"success"`
}

// errorBody is what clients receive for any failure.
type errorBody struct {
    Status  string `json:"status"`
    Message string `json:"message"`
}

func respond(c echo.Context, status int, data any, msg string) error {
    return c.JSON(status, apiResponse{StatusCode: status, Data: data, Message: msg, Success: status < http.StatusBadRequest})
}

// HTTPErrorHandler renders every error returned by handlers and middleware
// as an errorBody. Classified errors keep their message; anything else is
// reported as an internal error without leaking the cause.
func HTTPErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }
    status, msg := classify(err)
    if status >= http.StatusInternalServerError {
        log.Error().Err(err).
            Str("method", c.Request().Method).
            Str("path", c.Path()).
            Msg("request failed")
    }

    var werr error
    if c.Request().Method == http.MethodHead {
        werr = c.NoContent(status)
    } else {
        werr = c.JSON(status, errorBody{Status: "error", Message: msg})
    }
    if werr != nil {
        log.Error().Err(werr).Msg("write error response")
    }
}

func classify(err error) (int, string) {
    var ae *apperr.Error
    if errors.As(err, &ae) {
        if ae.Kind == apperr.KindInternal {
            return http.StatusInternalServerError, ae.Message
        }
        return ae.Kind.Status(), ae.Message
    }
    var he *echo.HTTPError
    if errors.As(err, &he) {
        msg := http.StatusText(he.Code)
        if s, ok := he.Message.(string); ok && s != "" {
            msg = s
        } else if he.Message != nil {
            msg = fmt.Sprint(he.Message)
        }
        if he.Code >= http.StatusInternalServerError {
            msg = "Internal server error"
        }
        return he.Code, msg
    }
    return http.StatusInternalServerError, "Internal server error"
}
