package repofake

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/notestack/internal/model"
	"github.com/iliyamo/notestack/internal/repository"
)

// Notes is an in-memory note store scoped by owner.
type Notes struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.Note
}

func NewNotes() *Notes {
	return &Notes{byID: make(map[uint64]model.Note)}
}

func (s *Notes) Create(_ context.Context, userID uint64, in model.NoteInput) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	n := model.Note{
		ID: s.nextID, UserID: userID,
		Title: in.Title, Content: in.Content, Tags: cloneTags(in.Tags),
		CreatedAt: now, UpdatedAt: now,
	}
	s.byID[n.ID] = n
	return &n, nil
}

func (s *Notes) GetByID(_ context.Context, id, userID uint64) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &n, nil
}

func (s *Notes) List(_ context.Context, userID uint64, f model.NoteFilter) ([]*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []*model.Note{}
	for _, n := range s.byID {
		if n.UserID != userID {
			continue
		}
		if f.FavoriteOnly && !n.Favorite {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Content), q) {
			continue
		}
		if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(t string) bool { return slices.Contains(n.Tags, t) }) {
			continue
		}
		out = append(out, &n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Notes) Update(_ context.Context, id, userID uint64, in model.NoteInput) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	n.Title, n.Content, n.Tags = in.Title, in.Content, cloneTags(in.Tags)
	n.UpdatedAt = time.Now().UTC()
	s.byID[id] = n
	return &n, nil
}

func (s *Notes) Delete(_ context.Context, id, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Notes) ToggleFavorite(_ context.Context, id, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.UserID != userID {
		return false, repository.ErrNotFound
	}
	n.Favorite = !n.Favorite
	s.byID[id] = n
	return n.Favorite, nil
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}
