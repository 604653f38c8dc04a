package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/notestack/internal/database/migrations"
)

func TestDSN(t *testing.T) {
	dsn := DSN("notes", "s3cret", "db", "3306", "notestack")

	assert.Contains(t, dsn, "notes:s3cret@tcp(db:3306)/notestack")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "multiStatements=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDSN_NoPassword(t *testing.T) {
	dsn := DSN("notes", "", "db", "3306", "notestack")
	assert.Contains(t, dsn, "notes@tcp(db:3306)/notestack")
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_users_sessions.sql", "00002_notes_bookmarks.sql"}, files)

	body, err := fs.ReadFile(migrations.FS, "00001_users_sessions.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "UNIQUE KEY uq_sessions_user (user_id)")
}

func TestMigrate_PropagatesError(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	want := errors.New("migration failed")
	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return want
	}

	err := Migrate(context.Background(), nil)
	assert.ErrorIs(t, err, want)
	assert.Equal(t, ".", gotDir)
}
