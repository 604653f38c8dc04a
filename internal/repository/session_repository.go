package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/notestack/internal/model"
)

// SessionRepo persists the refresh credential of each user. The sessions
// table has a unique user_id, so every write replaces the previous hash.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Upsert stores the hash for the user, overwriting any earlier session.
func (r *SessionRepo) Upsert(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token_hash, expires_at) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE token_hash=VALUES(token_hash), expires_at=VALUES(expires_at)`,
		userID, tokenHash, exp.UTC())
	return err
}

// GetByUser returns the user's session or ErrNotFound.
func (r *SessionRepo) GetByUser(ctx context.Context, userID uint64) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at, updated_at FROM sessions WHERE user_id=? LIMIT 1",
		userID).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	return s, err
}

// Rotate swaps oldHash for newHash in one statement. It returns
// ErrStaleSession when the stored hash no longer equals oldHash or the
// session has expired.
func (r *SessionRepo) Rotate(ctx context.Context, userID uint64, oldHash, newHash string, exp time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE sessions SET token_hash=?, expires_at=?
		 WHERE user_id=? AND token_hash=? AND expires_at > UTC_TIMESTAMP()`,
		newHash, exp.UTC(), userID, oldHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleSession
	}
	return nil
}

// DeleteByUser removes the user's session. Deleting a missing session is
// not an error.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", userID)
	return err
}
