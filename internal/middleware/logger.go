package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

// RequestLogger logs one zerolog event per request. Errors are handed to
// the HTTP error handler first so the logged status is the one the client
// received.
func RequestLogger() echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            var ev *zerolog.Event
            switch {
            case v.Status >= 500:
                ev = log.Error().Err(v.Error)
            case v.Status >= 400:
                ev = log.Warn()
            default:
                ev = log.Info()
            }
            ev = ev.Str("method", v.Method).
                Str("uri", v.URI).
                Int("status", v.Status).
                Dur("latency", v.Latency.Round(time.Microsecond)).
                Str("remote_ip", v.RemoteIP)
            if v.RequestID != "" {
                ev = ev.Str("request_id", v.RequestID)
            }
            if uid := userID(c); uid != 0 {
                ev = ev.Uint64("user_id", uid)
            }
            ev.Msg("request")
            return nil
        },
    })
}
