package service

import (
	"context"
	"errors"

	"github.com/iliyamo/notestack/internal/apperr"
	"github.com/iliyamo/notestack/internal/model"
	"github.com/iliyamo/notestack/internal/repository"
)

// NoteStore is the owner-scoped note persistence.
type NoteStore interface {
	Create(ctx context.Context, userID uint64, in model.NoteInput) (*model.Note, error)
	GetByID(ctx context.Context, id, userID uint64) (*model.Note, error)
	List(ctx context.Context, userID uint64, f model.NoteFilter) ([]*model.Note, error)
	Update(ctx context.Context, id, userID uint64, in model.NoteInput) (*model.Note, error)
	Delete(ctx context.Context, id, userID uint64) error
	ToggleFavorite(ctx context.Context, id, userID uint64) (bool, error)
}

// NoteService validates input and maps store errors onto apperr kinds.
type NoteService struct {
	store NoteStore
}

func NewNoteService(store NoteStore) *NoteService { return &NoteService{store: store} }

func validateNote(in model.NoteInput) (model.NoteInput, error) {
	var err error
	if in.Title, err = checkText("Title", in.Title, true, MaxTitleLen); err != nil {
		return in, err
	}
	if in.Content, err = checkText("Content", in.Content, true, MaxContentLen); err != nil {
		return in, err
	}
	if in.Tags, err = cleanTags(in.Tags); err != nil {
		return in, err
	}
	return in, nil
}

func (s *NoteService) Create(ctx context.Context, userID uint64, in model.NoteInput) (*model.Note, error) {
	in, err := validateNote(in)
	if err != nil {
		return nil, err
	}
	n, err := s.store.Create(ctx, userID, in)
	if err != nil {
		return nil, apperr.Internal("Failed to create note", err)
	}
	return n, nil
}

func (s *NoteService) Get(ctx context.Context, userID, id uint64) (*model.Note, error) {
	n, err := s.store.GetByID(ctx, id, userID)
	return n, noteErr(err, "Failed to load note")
}

// List returns the user's notes; the filter narrows it for search and
// favorites.
func (s *NoteService) List(ctx context.Context, userID uint64, f model.NoteFilter) ([]*model.Note, error) {
	notes, err := s.store.List(ctx, userID, f)
	if err != nil {
		return nil, apperr.Internal("Failed to list notes", err)
	}
	return notes, nil
}

func (s *NoteService) Update(ctx context.Context, userID, id uint64, in model.NoteInput) (*model.Note, error) {
	in, err := validateNote(in)
	if err != nil {
		return nil, err
	}
	n, err := s.store.Update(ctx, id, userID, in)
	return n, noteErr(err, "Failed to update note")
}

func (s *NoteService) Delete(ctx context.Context, userID, id uint64) error {
	return noteErr(s.store.Delete(ctx, id, userID), "Failed to delete note")
}

func (s *NoteService) ToggleFavorite(ctx context.Context, userID, id uint64) (bool, error) {
	fav, err := s.store.ToggleFavorite(ctx, id, userID)
	return fav, noteErr(err, "Failed to update note")
}

func noteErr(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Note not found")
	default:
		return apperr.Internal(msg, err)
	}
}
