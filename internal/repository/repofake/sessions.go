package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/notestack/internal/model"
	"github.com/iliyamo/notestack/internal/repository"
)

// Sessions keeps one refresh hash per user, like the UNIQUE(user_id)
// sessions table.
type Sessions struct {
	mu     sync.Mutex
	nextID uint64
	byUser map[uint64]model.Session
	now    func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{byUser: make(map[uint64]model.Session), now: time.Now}
}

// WithClock replaces the clock used for expiry checks.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

func (s *Sessions) Upsert(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	sess, ok := s.byUser[userID]
	if !ok {
		s.nextID++
		sess = model.Session{ID: s.nextID, UserID: userID, CreatedAt: now}
	}
	sess.TokenHash = tokenHash
	sess.ExpiresAt = exp.UTC()
	sess.UpdatedAt = now
	s.byUser[userID] = sess
	return nil
}

func (s *Sessions) GetByUser(_ context.Context, userID uint64) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byUser[userID]
	if !ok {
		return model.Session{}, repository.ErrNotFound
	}
	return sess, nil
}

func (s *Sessions) Rotate(_ context.Context, userID uint64, oldHash, newHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byUser[userID]
	if !ok || sess.TokenHash != oldHash || !sess.ExpiresAt.After(s.now().UTC()) {
		return repository.ErrStaleSession
	}
	sess.TokenHash = newHash
	sess.ExpiresAt = exp.UTC()
	sess.UpdatedAt = s.now().UTC()
	s.byUser[userID] = sess
	return nil
}

func (s *Sessions) DeleteByUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}

// Len reports how many sessions are stored.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser)
}
