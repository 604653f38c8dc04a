package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"statusCode": status, "data": data, "message": "", "success": true})
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}

func newTestClient(t *testing.T, h http.Handler, tokens Tokens) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithTokens(tokens))
	require.NoError(t, err)
	return c
}

func TestClient_RetriedRequestGets401AgainNoLoop(t *testing.T) {
	var protected, refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/notes", func(w http.ResponseWriter, r *http.Request) {
		protected.Add(1)
		writeErr(w, http.StatusUnauthorized, "Invalid Access Token")
	})
	mux.HandleFunc("/api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeData(w, http.StatusOK, Tokens{AccessToken: "a2", RefreshToken: "r2"})
	})
	c := newTestClient(t, mux, Tokens{AccessToken: "a1", RefreshToken: "r1"})

	_, err := c.ListNotes(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.False(t, errors.Is(err, ErrLoginRequired))
	assert.EqualValues(t, 2, protected.Load())
	assert.EqualValues(t, 1, refreshes.Load())
}

func TestClient_RefreshFailureRequiresLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/notes", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusUnauthorized, "Access token expired")
	})
	mux.HandleFunc("/api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusForbidden, "Refresh token is expired or used")
	})
	var saved []Tokens
	c := newTestClient(t, mux, Tokens{AccessToken: "a1", RefreshToken: "r1"})
	c.OnTokens = func(tk Tokens) { saved = append(saved, tk) }

	_, err := c.ListNotes(context.Background())
	require.ErrorIs(t, err, ErrLoginRequired)
	var lr *LoginRequiredError
	require.ErrorAs(t, err, &lr)
	assert.Equal(t, "/login", lr.LoginPath)
	assert.False(t, c.LoggedIn())
	assert.Equal(t, []Tokens{{}}, saved)
}

func TestClient_RefreshTransportFailureRequiresLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusUnauthorized, "Access token expired")
	})
	mux.HandleFunc("/api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = conn.Close()
	})
	c := newTestClient(t, mux, Tokens{AccessToken: "a", RefreshToken: "r"})

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, ErrLoginRequired)
	var lr *LoginRequiredError
	require.ErrorAs(t, err, &lr)
	assert.Equal(t, "/login", lr.LoginPath)
	assert.Error(t, lr.Err)
	assert.Equal(t, Tokens{}, c.Tokens())
}

func TestClient_CanceledRefreshKeepsSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		cancel()
		writeErr(w, http.StatusUnauthorized, "Access token expired")
	})
	mux.HandleFunc("/api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeData(w, http.StatusOK, Tokens{AccessToken: "a2", RefreshToken: "r2"})
	})
	tokens := Tokens{AccessToken: "a", RefreshToken: "r"}
	c := newTestClient(t, mux, tokens)

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrLoginRequired))
	assert.Equal(t, tokens, c.Tokens())
	assert.Zero(t, refreshes.Load())
}

func TestClient_NoRefreshTokenRequiresLogin(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusUnauthorized, "Unauthorized request: no token provided")
	})
	mux.HandleFunc("/api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
	})
	c := newTestClient(t, mux, Tokens{})

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Zero(t, refreshes.Load())
}

func TestClient_PublicCallsNeverRefresh(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeErr(w, http.StatusUnauthorized, "Invalid password")
	})
	mux.HandleFunc("/api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
	})
	c := newTestClient(t, mux, Tokens{AccessToken: "a1", RefreshToken: "r1"})

	_, err := c.Login(context.Background(), "alice", "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid password", apiErr.Message)
	assert.Zero(t, refreshes.Load())
	assert.Equal(t, "r1", c.Tokens().RefreshToken)
}

func TestClient_RetryResendsIdenticalBody(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/notes", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer a2" {
			writeErr(w, http.StatusUnauthorized, "Access token expired")
			return
		}
		writeData(w, http.StatusCreated, map[string]any{"id": 7, "title": "t"})
	})
	mux.HandleFunc("/api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "r1", req.RefreshToken)
		writeData(w, http.StatusOK, Tokens{AccessToken: "a2", RefreshToken: "r2"})
	})
	c := newTestClient(t, mux, Tokens{AccessToken: "a1", RefreshToken: "r1"})

	n, err := c.CreateNote(context.Background(), NoteInput{Title: "t", Content: "c", Tags: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n.ID)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
	assert.JSONEq(t, `{"title":"t","content":"c","tags":["x"]}`, bodies[0])
	assert.Equal(t, Tokens{AccessToken: "a2", RefreshToken: "r2"}, c.Tokens())
}

func TestClient_ConcurrentRequestsShareOneRefresh(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/notes", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeErr(w, http.StatusUnauthorized, "Access token expired")
			return
		}
		writeData(w, http.StatusOK, []any{})
	})
	mux.HandleFunc("/api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		time.Sleep(50 * time.Millisecond)
		writeData(w, http.StatusOK, Tokens{AccessToken: "fresh", RefreshToken: "r2"})
	})
	c := newTestClient(t, mux, Tokens{AccessToken: "stale", RefreshToken: "r1"})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ListNotes(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, refreshes.Load())
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New("localhost:8000")
	assert.Error(t, err)
}
