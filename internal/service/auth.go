// Package service holds the authentication and session lifecycle: token
// issuance, access token verification, refresh rotation and logout.
package service

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/notestack/internal/apperr"
	"github.com/iliyamo/notestack/internal/model"
	"github.com/iliyamo/notestack/internal/repository"
	"github.com/iliyamo/notestack/internal/utils"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 8

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// UserStore is the user persistence the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	FindByLogin(ctx context.Context, username, email string) (model.User, error)
}

// SessionStore persists one refresh credential per user.
type SessionStore interface {
	Upsert(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	GetByUser(ctx context.Context, userID uint64) (model.Session, error)
	Rotate(ctx context.Context, userID uint64, oldHash, newHash string, exp time.Time) error
	DeleteByUser(ctx context.Context, userID uint64) error
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
}

// LoginInput identifies the user by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult bundles the logged-in user with its fresh tokens.
type LoginResult struct {
	User   model.PublicUser
	Tokens TokenPair
}

// AuthService implements the session lifecycle.
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	tokens     *utils.TokenSigner
	bcryptCost int
}

func NewAuthService(users UserStore, sessions SessionStore, tokens *utils.TokenSigner, bcryptCost int) *AuthService {
	if users == nil || sessions == nil || tokens == nil {
		panic("nil dependency passed to NewAuthService")
	}
	return &AuthService{users: users, sessions: sessions, tokens: tokens, bcryptCost: bcryptCost}
}

// Register validates and creates a user. No tokens are issued; the client
// logs in afterwards.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.PublicUser, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))

	if in.FullName == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return model.PublicUser{}, apperr.Validation("All fields are required")
	}
	if !usernamePattern.MatchString(in.Username) {
		return model.PublicUser{}, apperr.Validation("Username can only contain lowercase letters, numbers, and underscores")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return model.PublicUser{}, apperr.Validation("Invalid email address")
	}
	if len(in.Password) < MinPasswordLen {
		return model.PublicUser{}, apperr.Validation("Password must be at least 8 characters long")
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.PublicUser{}, apperr.Internal("Something went wrong while hashing password", err)
	}
	u := &model.User{Username: in.Username, Email: in.Email, FullName: in.FullName, PasswordHash: hash, IsActive: true}
	if _, err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.PublicUser{}, apperr.Conflict("Username or Email already exists")
		}
		return model.PublicUser{}, apperr.Internal("Something went wrong registering user", err)
	}
	// Reload so timestamps come from the database.
	created, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return model.PublicUser{}, apperr.Internal("Something went wrong registering user", err)
	}
	log.Info().Uint64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created.Public(), nil
}

// Login checks the password with bcrypt and issues a new token pair,
// replacing any previous session of the user.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if strings.TrimSpace(in.Username) == "" && strings.TrimSpace(in.Email) == "" {
		return LoginResult{}, apperr.Validation("Username or Email is required")
	}
	if in.Password == "" {
		return LoginResult{}, apperr.Validation("Password is required")
	}

	u, err := s.users.FindByLogin(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, apperr.NotFound("User doesn't exist")
		}
		return LoginResult{}, apperr.Internal("Failed to load user", err)
	}
	if err := utils.VerifyPassword(u.PasswordHash, in.Password); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return LoginResult{}, apperr.Authentication("Invalid password")
		}
		return LoginResult{}, apperr.Internal("Failed to verify password", err)
	}
	if !u.IsActive {
		return LoginResult{}, apperr.Authentication("Account is disabled")
	}

	pair, err := s.IssueTokenPair(ctx, u)
	if err != nil {
		return LoginResult{}, err
	}
	log.Info().Uint64("user_id", u.ID).Msg("user logged in")
	return LoginResult{User: u.Public(), Tokens: pair}, nil
}

// IssueTokenPair mints an access and a refresh token for the user and
// stores the refresh hash, overwriting the previous session. This overwrite
// is the only revocation mechanism.
func (s *AuthService) IssueTokenPair(ctx context.Context, u model.User) (TokenPair, error) {
	if u.ID == 0 {
		return TokenPair{}, apperr.Internal("Failed to generate tokens", errors.New("user has no id"))
	}
	pair, err := s.mint(u)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.sessions.Upsert(ctx, u.ID, utils.HashToken(pair.RefreshToken), pair.RefreshExpires); err != nil {
		return TokenPair{}, apperr.Internal("Something went wrong while generating refresh and access token", err)
	}
	return pair, nil
}

func (s *AuthService) mint(u model.User) (TokenPair, error) {
	access, err := s.tokens.NewAccessToken(utils.TokenIdentity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
	})
	if err != nil {
		return TokenPair{}, apperr.Internal("Failed to generate tokens", err)
	}
	refresh, err := s.tokens.NewRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, apperr.Internal("Failed to generate tokens", err)
	}
	return TokenPair{
		AccessToken:    access.Token,
		AccessExpires:  access.Exp,
		RefreshToken:   refresh.Token,
		RefreshExpires: refresh.Exp,
	}, nil
}

// Refresh validates the presented refresh token against the stored session
// and rotates it. A token that verifies but no longer matches the stored
// hash has been superseded and is rejected with an authorization error.
func (s *AuthService) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TokenPair{}, apperr.Validation("Refresh Token is required")
	}
	uid, err := s.tokens.ParseRefresh(raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return TokenPair{}, apperr.Authentication("Refresh token expired")
		}
		return TokenPair{}, apperr.Authentication("Invalid Refresh Token")
	}

	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, apperr.NotFound("Invalid Refresh Token")
		}
		return TokenPair{}, apperr.Internal("Failed to load user", err)
	}
	if !u.IsActive {
		return TokenPair{}, apperr.Authentication("Account is disabled")
	}

	presented := utils.HashToken(raw)
	sess, err := s.sessions.GetByUser(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, apperr.Authorization("Refresh token is expired or used")
		}
		return TokenPair{}, apperr.Internal("Failed to load session", err)
	}
	if !utils.HashesEqual(sess.TokenHash, presented) {
		log.Warn().Uint64("user_id", uid).Msg("superseded refresh token presented")
		return TokenPair{}, apperr.Authorization("Refresh token is expired or used")
	}

	pair, err := s.mint(u)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.sessions.Rotate(ctx, uid, presented, utils.HashToken(pair.RefreshToken), pair.RefreshExpires); err != nil {
		if errors.Is(err, repository.ErrStaleSession) {
			return TokenPair{}, apperr.Authorization("Refresh token is expired or used")
		}
		return TokenPair{}, apperr.Internal("Failed to rotate session", err)
	}
	return pair, nil
}

// Logout deletes the user's session. It succeeds when no session exists.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return apperr.Internal("Failed to log out", err)
	}
	log.Info().Uint64("user_id", userID).Msg("user logged out")
	return nil
}

// Verify turns a raw access token into the current user. Every failure is
// an *apperr.Error so callers handle the result uniformly.
func (s *AuthService) Verify(ctx context.Context, raw string) (model.PublicUser, error) {
	if raw == "" {
		return model.PublicUser{}, apperr.Authentication("Unauthorized request: no token provided")
	}
	uid, _, err := s.tokens.ParseAccess(raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return model.PublicUser{}, apperr.Authentication("Access token expired")
		}
		return model.PublicUser{}, apperr.Authentication("Invalid Access Token")
	}
	// Load the live record so a deleted or disabled user cannot ride on a
	// token that is still within its lifetime.
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PublicUser{}, apperr.Authentication("Invalid Access Token")
		}
		return model.PublicUser{}, apperr.Internal("Failed to load user", err)
	}
	if !u.IsActive {
		return model.PublicUser{}, apperr.Authentication("Account is disabled")
	}
	return u.Public(), nil
}
