package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/notestack/internal/model"
)

const userColumns = "id,username,email,full_name,password_hash,is_active,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user whose password is already hashed and returns its ID.
// Username and email are normalized to lower case.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, full_name, password_hash) VALUES (?,?,?,?)",
		u.Username, u.Email, u.FullName, u.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	return u.ID, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// FindByLogin fetches the user by username, or by email when no username is
// given. A non-empty username always takes precedence over the email.
func (r *UserRepo) FindByLogin(ctx context.Context, username, email string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case username != "":
		return r.scanOne(r.DB.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
	case email != "":
		return r.scanOne(r.DB.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	}
	return model.User{}, ErrNotFound
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}
