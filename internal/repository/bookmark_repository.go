package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/notestack/internal/model"
)

const bookmarkColumns = "id, user_id, title, url, description, tags, favorite, visited, created_at, updated_at"

// BookmarkRepo encapsulates all queries on the bookmarks table. Every method
// is scoped by user ID.
type BookmarkRepo struct {
	db *sql.DB
}

func NewBookmarkRepo(db *sql.DB) *BookmarkRepo { return &BookmarkRepo{db: db} }

func scanBookmark(s rowScanner) (*model.Bookmark, error) {
	var (
		b    model.Bookmark
		tags []byte
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.Title, &b.URL, &b.Description, &tags, &b.Favorite, &b.Visited, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t, err := decodeTags(tags)
	if err != nil {
		return nil, err
	}
	b.Tags = t
	return &b, nil
}

// Create inserts a bookmark for the user and returns the stored row.
func (r *BookmarkRepo) Create(ctx context.Context, userID uint64, in model.BookmarkInput) (*model.Bookmark, error) {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO bookmarks (user_id, title, url, description, tags, favorite) VALUES (?, ?, ?, ?, ?, ?)",
		userID, in.Title, in.URL, in.Description, tags, in.Favorite)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id), userID)
}

// GetByID returns the bookmark only if it belongs to the user.
func (r *BookmarkRepo) GetByID(ctx context.Context, id, userID uint64) (*model.Bookmark, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bookmarkColumns+" FROM bookmarks WHERE id = ? AND user_id = ?", id, userID)
	return scanBookmark(row)
}

// List returns the user's bookmarks matching the filter, most recently
// updated first.
func (r *BookmarkRepo) List(ctx context.Context, userID uint64, f model.BookmarkFilter) ([]*model.Bookmark, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		p := likePattern(q)
		where = append(where, "(title LIKE ? OR url LIKE ? OR JSON_CONTAINS(tags, JSON_QUOTE(?)))")
		args = append(args, p, p, q)
	}
	if f.FavoriteOnly {
		where = append(where, "favorite = 1")
	}
	q := "SELECT " + bookmarkColumns + " FROM bookmarks WHERE " + strings.Join(where, " AND ") + " ORDER BY updated_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces title, url, description and tags of the user's bookmark.
func (r *BookmarkRepo) Update(ctx context.Context, id, userID uint64, in model.BookmarkInput) (*model.Bookmark, error) {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE bookmarks SET title = ?, url = ?, description = ?, tags = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		in.Title, in.URL, in.Description, tags, id, userID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, userID)
}

// Delete removes the user's bookmark.
func (r *BookmarkRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (r *BookmarkRepo) ToggleFavorite(ctx context.Context, id, userID uint64) (bool, error) {
	return toggleFavorite(ctx, r.db, "bookmarks", id, userID)
}

// MarkVisited stamps the visited column with the current time.
func (r *BookmarkRepo) MarkVisited(ctx context.Context, id, userID uint64) (*model.Bookmark, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE bookmarks SET visited = UTC_TIMESTAMP() WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return nil, err
	}
	// Two visits within the same second change nothing, so existence is
	// decided by the read.
	return r.GetByID(ctx, id, userID)
}

// FillDescription sets the description only while it is still empty, so a
// late preview never overwrites text the user typed in the meantime. It
// reports whether a row changed.
func (r *BookmarkRepo) FillDescription(ctx context.Context, id, userID uint64, description string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookmarks SET description = ? WHERE id = ? AND user_id = ? AND description = ''",
		description, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
