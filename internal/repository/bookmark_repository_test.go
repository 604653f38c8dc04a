package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/notestack/internal/model"
)

var bookmarkCols = []string{"id", "user_id", "title", "url", "description", "tags", "favorite", "visited", "created_at", "updated_at"}

func TestBookmarkRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookmarks (user_id, title, url, description, tags, favorite) VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs(uint64(1), "Go", "https://go.dev", "", `["lang"]`, true).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookmarks WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(5), uint64(1)).
		WillReturnRows(sqlmock.NewRows(bookmarkCols).AddRow(5, 1, "Go", "https://go.dev", "", []byte(`["lang"]`), true, now, now, now))

	b, err := NewBookmarkRepo(db).Create(context.Background(), 1, model.BookmarkInput{Title: "Go", URL: "https://go.dev", Tags: []string{"lang"}, Favorite: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), b.ID)
	assert.True(t, b.Favorite)
	assert.Equal(t, now, b.Visited)
}

func TestBookmarkRepo_List_Search(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = ? AND (title LIKE ? OR url LIKE ? OR JSON_CONTAINS(tags, JSON_QUOTE(?)))")).
		WithArgs(uint64(1), "%go%", "%go%", "go").
		WillReturnRows(sqlmock.NewRows(bookmarkCols).AddRow(5, 1, "Go", "https://go.dev", "", []byte(`[]`), false, now, now, now))

	list, err := NewBookmarkRepo(db).List(context.Background(), 1, model.BookmarkFilter{Query: " go "})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBookmarkRepo_FillDescription(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookmarkRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookmarks SET description = ? WHERE id = ? AND user_id = ? AND description = ''")).
		WithArgs("The Go Programming Language", uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookmarks SET description = ?")).
		WithArgs("The Go Programming Language", uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.FillDescription(context.Background(), 5, 1, "The Go Programming Language")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.FillDescription(context.Background(), 5, 1, "The Go Programming Language")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestBookmarkRepo_MarkVisited_NotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookmarks SET visited = UTC_TIMESTAMP()")).
		WithArgs(uint64(5), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookmarks WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(5), uint64(2)).
		WillReturnRows(sqlmock.NewRows(bookmarkCols))

	_, err := NewBookmarkRepo(db).MarkVisited(context.Background(), 5, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}
