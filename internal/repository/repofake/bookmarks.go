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

// Bookmarks is an in-memory bookmark store scoped by owner.
type Bookmarks struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.Bookmark
}

func NewBookmarks() *Bookmarks {
	return &Bookmarks{byID: make(map[uint64]model.Bookmark)}
}

func (s *Bookmarks) Create(_ context.Context, userID uint64, in model.BookmarkInput) (*model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	b := model.Bookmark{
		ID: s.nextID, UserID: userID,
		Title: in.Title, URL: in.URL, Description: in.Description,
		Tags: cloneTags(in.Tags), Favorite: in.Favorite,
		Visited: now, CreatedAt: now, UpdatedAt: now,
	}
	s.byID[b.ID] = b
	return &b, nil
}

func (s *Bookmarks) GetByID(_ context.Context, id, userID uint64) (*model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok || b.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *Bookmarks) List(_ context.Context, userID uint64, f model.BookmarkFilter) ([]*model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := strings.TrimSpace(f.Query)
	q := strings.ToLower(raw)
	out := []*model.Bookmark{}
	for _, b := range s.byID {
		if b.UserID != userID {
			continue
		}
		if f.FavoriteOnly && !b.Favorite {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(b.Title), q) &&
			!strings.Contains(strings.ToLower(b.URL), q) && !slices.Contains(b.Tags, raw) {
			continue
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Bookmarks) Update(_ context.Context, id, userID uint64, in model.BookmarkInput) (*model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok || b.UserID != userID {
		return nil, repository.ErrNotFound
	}
	b.Title, b.URL, b.Description = in.Title, in.URL, in.Description
	b.Tags, b.Favorite = cloneTags(in.Tags), in.Favorite
	b.UpdatedAt = time.Now().UTC()
	s.byID[id] = b
	return &b, nil
}

func (s *Bookmarks) Delete(_ context.Context, id, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok || b.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Bookmarks) ToggleFavorite(_ context.Context, id, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok || b.UserID != userID {
		return false, repository.ErrNotFound
	}
	b.Favorite = !b.Favorite
	s.byID[id] = b
	return b.Favorite, nil
}

func (s *Bookmarks) MarkVisited(_ context.Context, id, userID uint64) (*model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok || b.UserID != userID {
		return nil, repository.ErrNotFound
	}
	b.Visited = time.Now().UTC()
	s.byID[id] = b
	return &b, nil
}

func (s *Bookmarks) FillDescription(_ context.Context, id, userID uint64, description string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok || b.UserID != userID || b.Description != "" {
		return false, nil
	}
	b.Description = description
	s.byID[id] = b
	return true, nil
}
