package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notestack/internal/apperr"
	"github.com/iliyamo/notestack/internal/config"
	"github.com/iliyamo/notestack/internal/middleware"
	"github.com/iliyamo/notestack/internal/model"
	"github.com/iliyamo/notestack/internal/service"
)

// RefreshCookie carries the refresh token for browser clients.
const RefreshCookie = "refreshToken"

// AuthHandler bundles dependencies for the user endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	if auth == nil {
		panic("nil auth service passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}
type loginReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokensResp struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
type loginResp struct {
	User         model.PublicUser `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

// Register creates the user. The client logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, u, "User registered successfully")
}

// Login verifies credentials, sets both auth cookies and returns the pair
// in the body for non-browser clients.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	h.setAuthCookies(c, res.Tokens)
	return respond(c, http.StatusOK, loginResp{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// Refresh rotates the refresh token. The cookie is read first, then the
// JSON body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := ""
	if ck, err := c.Cookie(RefreshCookie); err == nil {
		raw = strings.TrimSpace(ck.Value)
	}
	if raw == "" {
		var req refreshReq
		if err := bind(c, &req); err != nil {
			return err
		}
		raw = req.RefreshToken
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, raw)
	if err != nil {
		return err
	}
	h.setAuthCookies(c, pair)
	return respond(c, http.StatusOK, tokensResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
}

// Logout deletes the session and clears the cookies. Repeating it is fine.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, uid); err != nil {
		return err
	}
	h.clearAuthCookies(c)
	return respond(c, http.StatusOK, nil, "User logged out")
}

// Me returns the current user as loaded by the auth middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Authentication("Unauthorized request")
	}
	return respond(c, http.StatusOK, u, "Current user fetched successfully")
}

func (h *AuthHandler) cookie(name, value string, exp time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if exp.IsZero() {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	} else {
		ck.Expires = exp
	}
	return ck
}

func (h *AuthHandler) setAuthCookies(c echo.Context, p service.TokenPair) {
	c.SetCookie(h.cookie(middleware.AccessCookie, p.AccessToken, p.AccessExpires))
	c.SetCookie(h.cookie(RefreshCookie, p.RefreshToken, p.RefreshExpires))
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	c.SetCookie(h.cookie(middleware.AccessCookie, "", time.Time{}))
	c.SetCookie(h.cookie(RefreshCookie, "", time.Time{}))
}
