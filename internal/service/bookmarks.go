package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/notestack/internal/apperr"
	"github.com/iliyamo/notestack/internal/model"
	"github.com/iliyamo/notestack/internal/repository"
)

// BookmarkStore is the owner-scoped bookmark persistence.
type BookmarkStore interface {
	Create(ctx context.Context, userID uint64, in model.BookmarkInput) (*model.Bookmark, error)
	GetByID(ctx context.Context, id, userID uint64) (*model.Bookmark, error)
	List(ctx context.Context, userID uint64, f model.BookmarkFilter) ([]*model.Bookmark, error)
	Update(ctx context.Context, id, userID uint64, in model.BookmarkInput) (*model.Bookmark, error)
	Delete(ctx context.Context, id, userID uint64) error
	ToggleFavorite(ctx context.Context, id, userID uint64) (bool, error)
	MarkVisited(ctx context.Context, id, userID uint64) (*model.Bookmark, error)
}

// BookmarkEvents receives bookmarks that were saved without a description
// so a background worker can fill one in.
type BookmarkEvents interface {
	BookmarkSaved(ctx context.Context, b *model.Bookmark) error
}

// BookmarkService validates input and maps store errors onto apperr kinds.
type BookmarkService struct {
	store  BookmarkStore
	events BookmarkEvents // nil disables link previews
}

func NewBookmarkService(store BookmarkStore, events BookmarkEvents) *BookmarkService {
	return &BookmarkService{store: store, events: events}
}

func validateBookmark(in model.BookmarkInput) (model.BookmarkInput, error) {
	var err error
	if in.Title, err = checkText("Title", in.Title, true, MaxTitleLen); err != nil {
		return in, err
	}
	if in.URL, err = checkURL(in.URL); err != nil {
		return in, err
	}
	if in.Description, err = checkText("Description", in.Description, false, MaxContentLen); err != nil {
		return in, err
	}
	if in.Tags, err = cleanTags(in.Tags); err != nil {
		return in, err
	}
	return in, nil
}

func (s *BookmarkService) Create(ctx context.Context, userID uint64, in model.BookmarkInput) (*model.Bookmark, error) {
	in, err := validateBookmark(in)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Create(ctx, userID, in)
	if err != nil {
		return nil, apperr.Internal("Failed to create bookmark", err)
	}
	s.announce(ctx, b)
	return b, nil
}

// announce publishes a link-preview request. The bookmark is already saved,
// so a broker failure is logged and swallowed.
func (s *BookmarkService) announce(ctx context.Context, b *model.Bookmark) {
	if s.events == nil || b.Description != "" {
		return
	}
	if err := s.events.BookmarkSaved(ctx, b); err != nil {
		log.Warn().Err(err).Uint64("bookmark_id", b.ID).Msg("publish bookmark.saved failed")
	}
}

func (s *BookmarkService) Get(ctx context.Context, userID, id uint64) (*model.Bookmark, error) {
	b, err := s.store.GetByID(ctx, id, userID)
	return b, bookmarkErr(err, "Failed to load bookmark")
}

func (s *BookmarkService) List(ctx context.Context, userID uint64, f model.BookmarkFilter) ([]*model.Bookmark, error) {
	out, err := s.store.List(ctx, userID, f)
	if err != nil {
		return nil, apperr.Internal("Failed to list bookmarks", err)
	}
	return out, nil
}

func (s *BookmarkService) Update(ctx context.Context, userID, id uint64, in model.BookmarkInput) (*model.Bookmark, error) {
	in, err := validateBookmark(in)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Update(ctx, id, userID, in)
	if err != nil {
		return nil, bookmarkErr(err, "Failed to update bookmark")
	}
	s.announce(ctx, b)
	return b, nil
}

func (s *BookmarkService) Delete(ctx context.Context, userID, id uint64) error {
	return bookmarkErr(s.store.Delete(ctx, id, userID), "Failed to delete bookmark")
}

func (s *BookmarkService) ToggleFavorite(ctx context.Context, userID, id uint64) (bool, error) {
	fav, err := s.store.ToggleFavorite(ctx, id, userID)
	return fav, bookmarkErr(err, "Failed to update bookmark")
}

func (s *BookmarkService) Visit(ctx context.Context, userID, id uint64) (*model.Bookmark, error) {
	b, err := s.store.MarkVisited(ctx, id, userID)
	return b, bookmarkErr(err, "Failed to update bookmark")
}

func bookmarkErr(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Bookmark not found")
	default:
		return apperr.Internal(msg, err)
	}
}
