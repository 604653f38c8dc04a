// Package repofake provides in-memory stores with the same contracts as the
// MySQL repositories. Tests use them to run services and handlers without a
// database.
package repofake

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/notestack/internal/model"
	"github.com/iliyamo/notestack/internal/repository"
)

// Users is an in-memory user store.
type Users struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
}

func NewUsers() *Users {
	return &Users{byID: make(map[uint64]model.User)}
}

func (s *Users) Create(_ context.Context, u *model.User) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return 0, repository.ErrDuplicate
		}
	}
	s.nextID++
	now := time.Now().UTC().Truncate(time.Second)
	u.ID = s.nextID
	u.CreatedAt, u.UpdatedAt = now, now
	s.byID[u.ID] = *u
	return u.ID, nil
}

func (s *Users) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *Users) FindByLogin(_ context.Context, username, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" && email == "" {
		return model.User{}, repository.ErrNotFound
	}
	for _, u := range s.byID {
		if username != "" {
			if u.Username == username {
				return u, nil
			}
		} else if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

// SetActive flips the active flag of a stored user.
func (s *Users) SetActive(id uint64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		u.IsActive = active
		s.byID[id] = u
	}
}

// Delete removes a user, as if the account had been deleted.
func (s *Users) Delete(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}
