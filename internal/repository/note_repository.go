package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/notestack/internal/model"
)

const noteColumns = "id, user_id, title, content, tags, favorite, created_at, updated_at"

// NoteRepo encapsulates all queries on the notes table. Every method is
// scoped by user ID.
type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(s rowScanner) (*model.Note, error) {
	var (
		n    model.Note
		tags []byte
	)
	if err := s.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &tags, &n.Favorite, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t, err := decodeTags(tags)
	if err != nil {
		return nil, err
	}
	n.Tags = t
	return &n, nil
}

// Create inserts a note for the user and returns the stored row.
func (r *NoteRepo) Create(ctx context.Context, userID uint64, in model.NoteInput) (*model.Note, error) {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (user_id, title, content, tags) VALUES (?, ?, ?, ?)",
		userID, in.Title, in.Content, tags)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	// Follow-up SELECT populates defaulted columns.
	return r.GetByID(ctx, uint64(id), userID)
}

// GetByID returns the note only if it belongs to the user.
func (r *NoteRepo) GetByID(ctx context.Context, id, userID uint64) (*model.Note, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ? AND user_id = ?", id, userID)
	return scanNote(row)
}

// List returns the user's notes matching the filter, most recently updated first.
func (r *NoteRepo) List(ctx context.Context, userID uint64, f model.NoteFilter) ([]*model.Note, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		p := likePattern(q)
		where = append(where, "(title LIKE ? OR content LIKE ?)")
		args = append(args, p, p)
	}
	if len(f.Tags) > 0 {
		tags, err := encodeTags(f.Tags)
		if err != nil {
			return nil, err
		}
		where = append(where, "JSON_OVERLAPS(tags, CAST(? AS JSON))")
		args = append(args, tags)
	}
	if f.FavoriteOnly {
		where = append(where, "favorite = 1")
	}
	q := "SELECT " + noteColumns + " FROM notes WHERE " + strings.Join(where, " AND ") + " ORDER BY updated_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the editable fields of the user's note and returns the
// updated row.
func (r *NoteRepo) Update(ctx context.Context, id, userID uint64, in model.NoteInput) (*model.Note, error) {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, tags = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		in.Title, in.Content, tags, id, userID); err != nil {
		return nil, err
	}
	// MySQL reports zero affected rows for no-op updates, so existence is
	// decided by reading the row back.
	return r.GetByID(ctx, id, userID)
}

// Delete removes the user's note.
func (r *NoteRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (r *NoteRepo) ToggleFavorite(ctx context.Context, id, userID uint64) (bool, error) {
	return toggleFavorite(ctx, r.db, "notes", id, userID)
}

// toggleFavorite flips favorite inside a transaction so the returned value
// is the one this call wrote.
func toggleFavorite(ctx context.Context, db *sql.DB, table string, id, userID uint64) (fav bool, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"UPDATE "+table+" SET favorite = NOT favorite WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, ErrNotFound
	}
	if err = tx.QueryRowContext(ctx,
		"SELECT favorite FROM "+table+" WHERE id = ? AND user_id = ?", id, userID).Scan(&fav); err != nil {
		return false, err
	}
	return fav, nil
}
