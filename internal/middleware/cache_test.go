package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/notestack/internal/config"
	"github.com/iliyamo/notestack/internal/model"
)

// cacheServer wires ListCache and InvalidateOnWrite the way the router does,
// with a header-based stand-in for authentication.
func cacheServer(t *testing.T, cfg config.CacheConfig) (*echo.Echo, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hits := 0
	e := echo.New()
	g := e.Group("/notes", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := strconv.ParseUint(c.Request().Header.Get("X-User"), 10, 64)
			SetUser(c, model.PublicUser{ID: id})
			return next(c)
		}
	}, InvalidateOnWrite(cfg, rdb, "notes"))
	g.GET("", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, map[string]int{"n": hits})
	}, ListCache(cfg, rdb, "notes"))
	g.GET("/missing", func(c echo.Context) error {
		hits++
		return echo.NewHTTPError(http.StatusNotFound)
	}, ListCache(cfg, rdb, "notes"))
	g.POST("", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	g.POST("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest) })
	return e, &hits
}

func do(e *echo.Echo, method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-User", user)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func enabledCache() config.CacheConfig {
	return config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "t", MaxBodyBytes: 1 << 20}
}

func TestListCache_HitAfterMiss(t *testing.T) {
	e, hits := cacheServer(t, enabledCache())

	first := do(e, http.MethodGet, "/notes", "1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(e, http.MethodGet, "/notes", "1")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, *hits)
}

func TestListCache_IsolatedPerUser(t *testing.T) {
	e, hits := cacheServer(t, enabledCache())

	do(e, http.MethodGet, "/notes", "1")
	rec := do(e, http.MethodGet, "/notes", "2")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, *hits)
}

func TestInvalidateOnWrite(t *testing.T) {
	e, hits := cacheServer(t, enabledCache())

	do(e, http.MethodGet, "/notes", "1")
	do(e, http.MethodGet, "/notes", "2")

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/notes", "1").Code)

	assert.Equal(t, "MISS", do(e, http.MethodGet, "/notes", "1").Header().Get("X-Cache"))
	assert.Equal(t, "HIT", do(e, http.MethodGet, "/notes", "2").Header().Get("X-Cache"))
	assert.Equal(t, 3, *hits)

	// A failed write leaves the cache alone.
	do(e, http.MethodPost, "/notes/fail", "1")
	assert.Equal(t, "HIT", do(e, http.MethodGet, "/notes", "1").Header().Get("X-Cache"))
}

func TestListCache_SkipsErrors(t *testing.T) {
	e, hits := cacheServer(t, enabledCache())

	do(e, http.MethodGet, "/notes/missing", "1")
	do(e, http.MethodGet, "/notes/missing", "1")
	assert.Equal(t, 2, *hits)
}

func TestListCache_Disabled(t *testing.T) {
	cfg := enabledCache()
	cfg.Enabled = false
	e, hits := cacheServer(t, cfg)

	do(e, http.MethodGet, "/notes", "1")
	rec := do(e, http.MethodGet, "/notes", "1")
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, *hits)
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
