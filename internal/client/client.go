// Package client is the Go counterpart of the browser front end. Client
// wraps every call with the current access token and, on a 401, refreshes
// the session once before retrying the call or asking for a new login.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

// LoginPath is where callers send the user when the session cannot be renewed.
const LoginPath = "/login"

const apiPrefix = "/api/v1"

// ErrLoginRequired matches any *LoginRequiredError via errors.Is.
var ErrLoginRequired = errors.New("login required")

// LoginRequiredError reports that the refresh token was rejected or absent.
// Local tokens have already been cleared when it is returned.
type LoginRequiredError struct {
	LoginPath string
	Err       error // the refresh failure, if any
}

func (e *LoginRequiredError) Error() string {
	if e.Err != nil {
		return "login required: " + e.Err.Error()
	}
	return "login required"
}

func (e *LoginRequiredError) Unwrap() error { return e.Err }

func (e *LoginRequiredError) Is(target error) bool { return target == ErrLoginRequired }

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Tokens is the session material the client holds.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Client talks to the notestack API. It is safe for concurrent use.
type Client struct {
	base *url.URL
	hc   *http.Client
	jar  *jar

	mu     sync.Mutex // guards tokens and gen
	tokens Tokens
	gen    uint64 // bumped whenever tokens change

	refreshMu sync.Mutex // serializes refreshes

	// OnTokens, when set, is called after tokens change (login, refresh,
	// logout) so callers can persist them.
	OnTokens func(Tokens)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its cookie jar is
// replaced by the client's own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTokens seeds the client with a previously saved session.
func WithTokens(t Tokens) Option {
	return func(c *Client) { c.tokens = t }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https: %q", baseURL)
	}
	c := &Client{base: u, hc: &http.Client{Timeout: 15 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	j, err := newJar()
	if err != nil {
		return nil, err
	}
	c.jar = j
	c.hc.Jar = j
	return c, nil
}

// jar is a cookie jar that can be emptied while requests are in flight.
type jar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
}

func newJar() (*jar, error) {
	j := &jar{}
	return j, j.reset()
}

func (j *jar) reset() error {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
	return nil
}

func (j *jar) current() *cookiejar.Jar {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner
}

func (j *jar) SetCookies(u *url.URL, cookies []*http.Cookie) { j.current().SetCookies(u, cookies) }

func (j *jar) Cookies(u *url.URL) []*http.Cookie { return j.current().Cookies(u) }

// Tokens returns the current session material.
func (c *Client) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// LoggedIn reports whether the client holds a refresh token.
func (c *Client) LoggedIn() bool { return c.Tokens().RefreshToken != "" }

func (c *Client) setTokens(t Tokens) {
	c.mu.Lock()
	c.tokens = t
	c.gen++
	cb := c.OnTokens
	c.mu.Unlock()
	if cb != nil {
		cb(t)
	}
}

// clearTokens forgets the session, including cookies set by the server.
func (c *Client) clearTokens() {
	_ = c.jar.reset()
	c.setTokens(Tokens{})
}

func (c *Client) snapshot() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens.AccessToken, c.gen
}

// request describes one API call.
type request struct {
	method string
	path   string // relative to /api/v1
	query  url.Values
	body   any
	out    any
	// public calls never carry a token and never trigger a refresh.
	public bool
}

// envelope mirrors the server's success body.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// do sends r. A 401 on a protected call refreshes the session once and
// resubmits the identical body; a second 401 is returned as is.
func (c *Client) do(ctx context.Context, r request) error {
	var payload []byte
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		payload = b
	}

	retried := false
	for {
		token, gen := c.snapshot()
		if r.public {
			token = ""
		}
		resp, err := c.send(ctx, r, payload, token)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized && !r.public && !retried {
			drain(resp)
			retried = true
			if err := c.refresh(ctx, gen); err != nil {
				return err
			}
			log.Debug().Str("path", r.path).Msg("session refreshed, retrying request")
			continue
		}
		return decode(resp, r.out)
	}
}

func (c *Client) send(ctx context.Context, r request, payload []byte, token string) (*http.Response, error) {
	u := c.base.JoinPath(apiPrefix, r.path)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.hc.Do(req)
}

// refresh renews the session unless another goroutine already did so
// after seenGen was read.
func (c *Client) refresh(ctx context.Context, seenGen uint64) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	current, rt := c.gen, c.tokens.RefreshToken
	c.mu.Unlock()
	if current != seenGen && rt != "" {
		return nil
	}
	if rt == "" {
		c.clearTokens()
		return &LoginRequiredError{LoginPath: LoginPath}
	}

	var t Tokens
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/users/refresh-token",
		body:   map[string]string{"refreshToken": rt},
		out:    &t,
		public: true,
	})
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; the session may still be good.
			return err
		}
		c.clearTokens()
		return &LoginRequiredError{LoginPath: LoginPath, Err: err}
	}
	c.setTokens(t)
	return nil
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
