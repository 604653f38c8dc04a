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

var noteCols = []string{"id", "user_id", "title", "content", "tags", "favorite", "created_at", "updated_at"}

func TestNoteRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepo(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notes (user_id, title, content, tags) VALUES (?, ?, ?, ?)")).
		WithArgs(uint64(1), "Groceries", "milk", `["home","todo"]`).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM notes WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(10), uint64(1)).
		WillReturnRows(sqlmock.NewRows(noteCols).AddRow(10, 1, "Groceries", "milk", []byte(`["home","todo"]`), false, now, now))

	n, err := repo.Create(context.Background(), 1, model.NoteInput{Title: "Groceries", Content: "milk", Tags: []string{"home", "todo"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n.ID)
	assert.Equal(t, []string{"home", "todo"}, n.Tags)
}

func TestNoteRepo_Create_NilTagsStoredAsEmptyArray(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notes")).
		WithArgs(uint64(1), "t", "c", `[]`).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM notes WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(noteCols).AddRow(11, 1, "t", "c", []byte(`[]`), false, now, now))

	n, err := NewNoteRepo(db).Create(context.Background(), 1, model.NoteInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, n.Tags)
}

func TestNoteRepo_List_Filters(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE user_id = ? AND (title LIKE ? OR content LIKE ?) AND JSON_OVERLAPS(tags, CAST(? AS JSON)) AND favorite = 1 ORDER BY updated_at DESC, id DESC")).
		WithArgs(uint64(1), `%50\%%`, `%50\%%`, `["work"]`).
		WillReturnRows(sqlmock.NewRows(noteCols).AddRow(3, 1, "Q3", "50% done", []byte(`["work"]`), true, now, now))

	notes, err := NewNoteRepo(db).List(context.Background(), 1, model.NoteFilter{Query: "50%", Tags: []string{"work"}, FavoriteOnly: true})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Favorite)
}

func TestNoteRepo_List_EmptyIsNotNil(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notes WHERE user_id = ? ORDER BY")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(noteCols))

	notes, err := NewNoteRepo(db).List(context.Background(), 1, model.NoteFilter{})
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestNoteRepo_Update_ForeignNoteIsNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET title = ?")).
		WithArgs("t", "c", `[]`, uint64(3), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM notes WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(3), uint64(2)).
		WillReturnRows(sqlmock.NewRows(noteCols))

	_, err := NewNoteRepo(db).Update(context.Background(), 3, 2, model.NoteInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoteRepo_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(3), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(3), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 3, 1))
	assert.ErrorIs(t, repo.Delete(context.Background(), 3, 1), ErrNotFound)
}

func TestNoteRepo_ToggleFavorite(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET favorite = NOT favorite WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(3), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT favorite FROM notes")).
		WithArgs(uint64(3), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"favorite"}).AddRow(true))
	mock.ExpectCommit()

	fav, err := NewNoteRepo(db).ToggleFavorite(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.True(t, fav)
}

func TestNoteRepo_ToggleFavorite_NotFoundRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET favorite = NOT favorite")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := NewNoteRepo(db).ToggleFavorite(context.Background(), 3, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
