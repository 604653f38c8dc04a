package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/notestack/internal/cache"
    "github.com/iliyamo/notestack/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

// Write forwards b and keeps at most limit bytes; size counts everything.
func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - cw.size; remain > 0 {
        cw.buf.Write(b[:min(int64(len(b)), remain)])
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// requestDigest identifies a cacheable request by route and query.
func requestDigest(c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(c.Path() + "?" + r.URL.RawQuery))
    return fmt.Sprintf("%x", sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    total := 4 + 4 + len(hdrJSON) + len(body)
    out := make([]byte, total)
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if 8+hlen > len(bs) || hlen < 0 {
        return 0, nil, nil, false
    }
    var hdr http.Header
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    } else {
        hdr = make(http.Header)
    }
    body = bs[8+hlen:]
    return status, hdr, body, true
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// ListCache caches successful GET responses of one resource per user. Keys
// embed the user's generation counter so InvalidateOnWrite can drop all of
// them with one INCR. Headers and body are stored so a hit is byte for byte
// identical to the original response.
func ListCache(cfg config.CacheConfig, rdb *redis.Client, resource string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    gens := cache.NewGenerations(rdb, cfg.Prefix)
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid := userID(c)
            if c.Request().Method != http.MethodGet || uid == 0 {
                return next(c)
            }

            ctx := c.Request().Context()
            gen, err := gens.Current(ctx, uid, resource)
            if err != nil {
                // Redis trouble degrades to uncached reads.
                log.Warn().Err(err).Str("resource", resource).Msg("cache generation lookup failed")
                return next(c)
            }
            key := gens.EntryKey(uid, resource, gen, requestDigest(c))

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            } else if !errors.Is(err, redis.Nil) {
                log.Warn().Err(err).Str("key", key).Msg("cache read failed")
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            // Truncated bodies are never stored.
            if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
            if err != nil {
                return nil
            }
            // The request context may already be cancelled once the client
            // has its response.
            if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err(); err != nil {
                log.Warn().Err(err).Str("key", key).Msg("cache write failed")
            }
            return nil
        }
    }
}

// InvalidateOnWrite bumps the user's generation for resource after every
// successful non-GET request, so later list reads miss the cache.
func InvalidateOnWrite(cfg config.CacheConfig, rdb *redis.Client, resource string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    gens := cache.NewGenerations(rdb, cfg.Prefix)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := next(c); err != nil {
                return err
            }
            uid := userID(c)
            if c.Request().Method == http.MethodGet || uid == 0 || c.Response().Status >= http.StatusBadRequest {
                return nil
            }
            if err := gens.Bump(context.WithoutCancel(c.Request().Context()), uid, resource); err != nil {
                log.Error().Err(err).Uint64("user_id", uid).Str("resource", resource).Msg("cache invalidation failed")
            }
            return nil
        }
    }
}
