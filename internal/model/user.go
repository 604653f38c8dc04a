package model

import "time"

// User represents an account as stored in the `users` table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique lowercase handle.
//  Email        – unique email address.
//  FullName     – display name.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – disabled users are rejected even with a valid token.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    Email        string    // users.email
    FullName     string    // users.full_name
    PasswordHash string    // users.password_hash
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Public strips credential material from the user.
func (u User) Public() PublicUser {
    return PublicUser{
        ID:        u.ID,
        Username:  u.Username,
        Email:     u.Email,
        FullName:  u.FullName,
        CreatedAt: u.CreatedAt,
        UpdatedAt: u.UpdatedAt,
    }
}

// PublicUser is the identity attached to authenticated requests and returned
// to clients. It never carries the password hash or session material.
type PublicUser struct {
    ID        uint64    `json:"id"`
    Username  string    `json:"username"`
    Email     string    `json:"email"`
    FullName  string    `json:"fullName"`
    CreatedAt time.Time `json:"createdAt"`
    UpdatedAt time.Time `json:"updatedAt"`
}

// Session models a row in the `sessions` table: the refresh credential of a
// user. Only the SHA‑256 hash of the refresh token is stored. user_id is
// unique, so a user holds at most one valid refresh token and writing a new
// hash revokes the previous one.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  TokenHash – SHA‑256 hex digest of the current refresh token.
//  ExpiresAt – expiration timestamp of the refresh token.
//  CreatedAt – first login of this session.
//  UpdatedAt – last rotation.
type Session struct {
    ID        uint64    // sessions.id
    UserID    uint64    // sessions.user_id
    TokenHash string    // sessions.token_hash
    ExpiresAt time.Time // sessions.expires_at
    CreatedAt time.Time // sessions.created_at
    UpdatedAt time.Time // sessions.updated_at
}
