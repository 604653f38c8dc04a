package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notestack/internal/apperr"
	"github.com/iliyamo/notestack/internal/model"
	"github.com/iliyamo/notestack/internal/service"
)

// BookmarkHandler serves the /bookmarks endpoints.
type BookmarkHandler struct {
	Bookmarks *service.BookmarkService
}

func NewBookmarkHandler(bookmarks *service.BookmarkService) *BookmarkHandler {
	if bookmarks == nil {
		panic("nil bookmark service passed to NewBookmarkHandler")
	}
	return &BookmarkHandler{Bookmarks: bookmarks}
}

type bookmarkReq struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Favorite    bool     `json:"favorite"`
}

func (r bookmarkReq) input() model.BookmarkInput {
	return model.BookmarkInput{
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
		Tags:        r.Tags,
		Favorite:    r.Favorite,
	}
}

func (h *BookmarkHandler) List(c echo.Context) error {
	return h.list(c, model.BookmarkFilter{}, "Bookmarks fetched successfully")
}

// Search matches ?query= against title and url, or exactly against a tag.
func (h *BookmarkHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("query"))
	if q == "" {
		return apperr.Validation("Search query is required")
	}
	return h.list(c, model.BookmarkFilter{Query: q}, "Bookmarks fetched successfully")
}

func (h *BookmarkHandler) Favorites(c echo.Context) error {
	return h.list(c, model.BookmarkFilter{FavoriteOnly: true}, "Favorite bookmarks fetched successfully")
}

func (h *BookmarkHandler) list(c echo.Context, f model.BookmarkFilter, msg string) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	out, err := h.Bookmarks.List(ctx, uid, f)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out, msg)
}

func (h *BookmarkHandler) Get(c echo.Context) error {
	uid, id, err := ownerAndID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	b, err := h.Bookmarks.Get(ctx, uid, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, b, "Bookmark fetched successfully")
}

func (h *BookmarkHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req bookmarkReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	b, err := h.Bookmarks.Create(ctx, uid, req.input())
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, b, "Bookmark created successfully")
}

func (h *BookmarkHandler) Update(c echo.Context) error {
	uid, id, err := ownerAndID(c)
	if err != nil {
		return err
	}
	var req bookmarkReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	b, err := h.Bookmarks.Update(ctx, uid, id, req.input())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, b, "Bookmark updated successfully")
}

func (h *BookmarkHandler) Delete(c echo.Context) error {
	uid, id, err := ownerAndID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Bookmarks.Delete(ctx, uid, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Bookmark deleted successfully")
}

func (h *BookmarkHandler) ToggleFavorite(c echo.Context) error {
	uid, id, err := ownerAndID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	fav, err := h.Bookmarks.ToggleFavorite(ctx, uid, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, favoriteResp{ID: id, Favorite: fav}, "Bookmark favorite toggled")
}

// Visit stamps the bookmark's visited time.
func (h *BookmarkHandler) Visit(c echo.Context) error {
	uid, id, err := ownerAndID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	b, err := h.Bookmarks.Visit(ctx, uid, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, b, "Bookmark visited")
}
