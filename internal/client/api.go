package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/notestack/internal/model"
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// NoteInput is the body of note create and update calls.
type NoteInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// BookmarkInput is the body of bookmark create and update calls.
type BookmarkInput struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Favorite    bool     `json:"favorite,omitempty"`
}

type favoriteResult struct {
	ID       uint64 `json:"id"`
	Favorite bool   `json:"favorite"`
}

func itemPath(kind string, id uint64, suffix ...string) string {
	return "/" + kind + "/" + strconv.FormatUint(id, 10) + strings.Join(suffix, "")
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (model.PublicUser, error) {
	var u model.PublicUser
	err := c.do(ctx, request{method: http.MethodPost, path: "/users/register", body: in, out: &u, public: true})
	return u, err
}

// Login authenticates by username or email and stores the returned tokens.
func (c *Client) Login(ctx context.Context, login, password string) (model.PublicUser, error) {
	body := map[string]string{"password": password}
	if strings.Contains(login, "@") {
		body["email"] = login
	} else {
		body["username"] = login
	}
	var out struct {
		User model.PublicUser `json:"user"`
		Tokens
	}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/users/login", body: body, out: &out, public: true}); err != nil {
		return model.PublicUser{}, err
	}
	c.setTokens(out.Tokens)
	return out.User, nil
}

// Logout ends the server session and always forgets local tokens.
func (c *Client) Logout(ctx context.Context) error {
	defer c.clearTokens()
	return c.do(ctx, request{method: http.MethodPost, path: "/users/logout"})
}

// Me returns the logged-in user.
func (c *Client) Me(ctx context.Context) (model.PublicUser, error) {
	var u model.PublicUser
	err := c.do(ctx, request{method: http.MethodGet, path: "/users/me", out: &u})
	return u, err
}

// ----- notes -----

func (c *Client) ListNotes(ctx context.Context) ([]model.Note, error) {
	var out []model.Note
	err := c.do(ctx, request{method: http.MethodGet, path: "/notes", out: &out})
	return out, err
}

// SearchNotes matches q against title and content and tags against note tags.
func (c *Client) SearchNotes(ctx context.Context, q string, tags []string) ([]model.Note, error) {
	query := url.Values{}
	if q != "" {
		query.Set("q", q)
	}
	if len(tags) > 0 {
		query.Set("tags", strings.Join(tags, ","))
	}
	var out []model.Note
	err := c.do(ctx, request{method: http.MethodGet, path: "/notes/search", query: query, out: &out})
	return out, err
}

func (c *Client) FavoriteNotes(ctx context.Context) ([]model.Note, error) {
	var out []model.Note
	err := c.do(ctx, request{method: http.MethodGet, path: "/notes/favorites", out: &out})
	return out, err
}

func (c *Client) GetNote(ctx context.Context, id uint64) (model.Note, error) {
	var n model.Note
	err := c.do(ctx, request{method: http.MethodGet, path: itemPath("notes", id), out: &n})
	return n, err
}

func (c *Client) CreateNote(ctx context.Context, in NoteInput) (model.Note, error) {
	var n model.Note
	err := c.do(ctx, request{method: http.MethodPost, path: "/notes", body: in, out: &n})
	return n, err
}

func (c *Client) UpdateNote(ctx context.Context, id uint64, in NoteInput) (model.Note, error) {
	var n model.Note
	err := c.do(ctx, request{method: http.MethodPut, path: itemPath("notes", id), body: in, out: &n})
	return n, err
}

func (c *Client) DeleteNote(ctx context.Context, id uint64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: itemPath("notes", id)})
}

// ToggleNoteFavorite flips the flag and returns its new value.
func (c *Client) ToggleNoteFavorite(ctx context.Context, id uint64) (bool, error) {
	var out favoriteResult
	err := c.do(ctx, request{method: http.MethodPost, path: itemPath("notes", id, "/favorite"), out: &out})
	return out.Favorite, err
}

// ----- bookmarks -----

func (c *Client) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	var out []model.Bookmark
	err := c.do(ctx, request{method: http.MethodGet, path: "/bookmarks", out: &out})
	return out, err
}

func (c *Client) SearchBookmarks(ctx context.Context, q string) ([]model.Bookmark, error) {
	var out []model.Bookmark
	err := c.do(ctx, request{method: http.MethodGet, path: "/bookmarks/search", query: url.Values{"query": {q}}, out: &out})
	return out, err
}

func (c *Client) FavoriteBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	var out []model.Bookmark
	err := c.do(ctx, request{method: http.MethodGet, path: "/bookmarks/favorites", out: &out})
	return out, err
}

func (c *Client) GetBookmark(ctx context.Context, id uint64) (model.Bookmark, error) {
	var b model.Bookmark
	err := c.do(ctx, request{method: http.MethodGet, path: itemPath("bookmarks", id), out: &b})
	return b, err
}

func (c *Client) CreateBookmark(ctx context.Context, in BookmarkInput) (model.Bookmark, error) {
	var b model.Bookmark
	err := c.do(ctx, request{method: http.MethodPost, path: "/bookmarks", body: in, out: &b})
	return b, err
}

func (c *Client) UpdateBookmark(ctx context.Context, id uint64, in BookmarkInput) (model.Bookmark, error) {
	var b model.Bookmark
	err := c.do(ctx, request{method: http.MethodPut, path: itemPath("bookmarks", id), body: in, out: &b})
	return b, err
}

func (c *Client) DeleteBookmark(ctx context.Context, id uint64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: itemPath("bookmarks", id)})
}

func (c *Client) ToggleBookmarkFavorite(ctx context.Context, id uint64) (bool, error) {
	var out favoriteResult
	err := c.do(ctx, request{method: http.MethodPost, path: itemPath("bookmarks", id, "/favorite"), out: &out})
	return out.Favorite, err
}

// VisitBookmark stamps the visited time and returns the updated bookmark.
func (c *Client) VisitBookmark(ctx context.Context, id uint64) (model.Bookmark, error) {
	var b model.Bookmark
	err := c.do(ctx, request{method: http.MethodPost, path: itemPath("bookmarks", id, "/visit"), out: &b})
	return b, err
}
