package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notestack/internal/apperr"
	"github.com/iliyamo/notestack/internal/model"
	"github.com/iliyamo/notestack/internal/service"
)

// NoteHandler serves the /notes endpoints. Every call is scoped to the
// authenticated user.
type NoteHandler struct {
	Notes *service.NoteService
}

func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	if notes == nil {
		panic("nil note service passed to NewNoteHandler")
	}
	return &NoteHandler{Notes: notes}
}

type noteReq struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (r noteReq) input() model.NoteInput {
	return model.NoteInput{Title: r.Title, Content: r.Content, Tags: r.Tags}
}

type favoriteResp struct {
	ID       uint64 `json:"id"`
	Favorite bool   `json:"favorite"`
}

// List returns all notes of the user, newest first.
func (h *NoteHandler) List(c echo.Context) error {
	return h.list(c, model.NoteFilter{}, "Notes fetched successfully")
}

// Search matches q against title and content and tags against the note's
// tags. At least one of them is required.
func (h *NoteHandler) Search(c echo.Context) error {
	f := model.NoteFilter{
		Query: strings.TrimSpace(c.QueryParam("q")),
		Tags:  service.SplitTags(c.QueryParam("tags")),
	}
	if f.Query == "" && len(f.Tags) == 0 {
		return apperr.Validation("Search query is required")
	}
	return h.list(c, f, "Notes fetched successfully")
}

// Favorites lists notes marked as favorite.
func (h *NoteHandler) Favorites(c echo.Context) error {
	return h.list(c, model.NoteFilter{FavoriteOnly: true}, "Favorite notes fetched successfully")
}

func (h *NoteHandler) list(c echo.Context, f model.NoteFilter, msg string) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	notes, err := h.Notes.List(ctx, uid, f)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, notes, msg)
}

func (h *NoteHandler) Get(c echo.Context) error {
	uid, id, err := ownerAndID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := h.Notes.Get(ctx, uid, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, n, "Note fetched successfully")
}

func (h *NoteHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req noteReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := h.Notes.Create(ctx, uid, req.input())
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, n, "Note created successfully")
}

func (h *NoteHandler) Update(c echo.Context) error {
	uid, id, err := ownerAndID(c)
	if err != nil {
		return err
	}
	var req noteReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := h.Notes.Update(ctx, uid, id, req.input())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, n, "Note updated successfully")
}

func (h *NoteHandler) Delete(c echo.Context) error {
	uid, id, err := ownerAndID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Notes.Delete(ctx, uid, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Note deleted successfully")
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (h *NoteHandler) ToggleFavorite(c echo.Context) error {
	uid, id, err := ownerAndID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	fav, err := h.Notes.ToggleFavorite(ctx, uid, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, favoriteResp{ID: id, Favorite: fav}, "Note favorite toggled")
}
