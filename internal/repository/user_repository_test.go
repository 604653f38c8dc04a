package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/notestack/internal/model"
)

var userCols = []string{"id", "username", "email", "full_name", "password_hash", "is_active", "created_at", "updated_at"}

func TestUserRepo_Create_Normalizes(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, email, full_name, password_hash) VALUES (?,?,?,?)")).
		WithArgs("alice", "alice@example.com", "Alice A", "hash").
		WillReturnResult(sqlmock.NewResult(42, 1))

	u := &model.User{Username: " Alice ", Email: "ALICE@example.com", FullName: "Alice A", PasswordHash: "hash"}
	id, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, uint64(42), u.ID)
	assert.Equal(t, "alice", u.Username)
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'uq_users_username'"})

	_, err := repo.Create(context.Background(), &model.User{Username: "alice", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepo_FindByLogin(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=? LIMIT 1")).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "alice@example.com", "Alice", "hash", true, now, now))

	u, err := repo.FindByLogin(context.Background(), "", " Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.IsActive)
}

func TestUserRepo_FindByLogin_UsernameTakesPrecedence(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username=? LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "alice@example.com", "Alice", "hash", true, now, now))

	u, err := NewUserRepo(db).FindByLogin(context.Background(), "Alice", "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_FindByLogin_EmptyNeverQueries(t *testing.T) {
	db, _ := newMock(t)
	_, err := NewUserRepo(db).FindByLogin(context.Background(), " ", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := NewUserRepo(db).GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
