package utils // package utils provides helpers for token creation, hashing and passwords

import (
    "crypto/sha256"
    "crypto/subtle"
    "encoding/hex"
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
)

var (
    // ErrTokenExpired is returned when a token's exp claim is in the past.
    ErrTokenExpired = errors.New("token expired")
    // ErrTokenInvalid covers bad signatures, wrong algorithms and malformed claims.
    ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims are embedded in access tokens. The subject is the user ID.
type AccessClaims struct {
    Username string `json:"username"`
    Email    string `json:"email"`
    FullName string `json:"full_name"`
    jwt.RegisteredClaims
}

// RefreshClaims only identify the user; everything else is loaded fresh.
type RefreshClaims struct {
    jwt.RegisteredClaims
}

// SignedToken is a serialized JWT along with its expiry.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenIdentity is the user data an access token carries.
type TokenIdentity struct {
    UserID   uint64
    Username string
    Email    string
    FullName string
}

// TokenSigner mints and verifies HS256 tokens. Access and refresh tokens use
// different secrets so one can never be accepted in place of the other.
type TokenSigner struct {
    accessSecret  []byte
    refreshSecret []byte
    accessTTL     time.Duration
    refreshTTL    time.Duration
    now           func() time.Time
}

// NewTokenSigner builds a signer from the configured secrets and lifetimes.
func NewTokenSigner(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenSigner {
    return &TokenSigner{
        accessSecret:  []byte(accessSecret),
        refreshSecret: []byte(refreshSecret),
        accessTTL:     accessTTL,
        refreshTTL:    refreshTTL,
        now:           func() time.Time { return time.Now().UTC() },
    }
}

// WithClock returns a copy of the signer that reads time from now.
func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
    cp := *s
    cp.now = now
    return &cp
}

// AccessTTL reports the configured access token lifetime.
func (s *TokenSigner) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (s *TokenSigner) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenSigner) registered(userID uint64, ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
    iat := s.now().Truncate(time.Second)
    exp := iat.Add(ttl)
    return jwt.RegisteredClaims{
        Subject:   strconv.FormatUint(userID, 10),
        IssuedAt:  jwt.NewNumericDate(iat),
        ExpiresAt: jwt.NewNumericDate(exp),
        // A random ID keeps two tokens minted in the same second distinct,
        // which rotation relies on.
        ID: uuid.NewString(),
    }, exp
}

// NewAccessToken signs a short-lived token carrying the user's identity.
func (s *TokenSigner) NewAccessToken(id TokenIdentity) (SignedToken, error) {
    rc, exp := s.registered(id.UserID, s.accessTTL)
    claims := AccessClaims{
        Username:         id.Username,
        Email:            id.Email,
        FullName:         id.FullName,
        RegisteredClaims: rc,
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken signs a long-lived token carrying only the user ID.
func (s *TokenSigner) NewRefreshToken(userID uint64) (SignedToken, error) {
    rc, exp := s.registered(userID, s.refreshTTL)
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{RegisteredClaims: rc}).SignedString(s.refreshSecret)
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseAccess verifies an access token and returns its claims along with the
// decoded user ID.
func (s *TokenSigner) ParseAccess(raw string) (uint64, *AccessClaims, error) {
    claims := &AccessClaims{}
    uid, err := s.parse(raw, claims, s.accessSecret)
    if err != nil {
        return 0, nil, err
    }
    return uid, claims, nil
}

// ParseRefresh verifies a refresh token and returns the user ID it names.
func (s *TokenSigner) ParseRefresh(raw string) (uint64, error) {
    return s.parse(raw, &RefreshClaims{}, s.refreshSecret)
}

func (s *TokenSigner) parse(raw string, claims jwt.Claims, secret []byte) (uint64, error) {
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        // Reject anything that is not HMAC so an attacker cannot pick the algorithm.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenInvalid
        }
        return secret, nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(s.now),
    )
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return 0, ErrTokenExpired
        }
        return 0, ErrTokenInvalid
    }
    if !tok.Valid {
        return 0, ErrTokenInvalid
    }
    sub, err := claims.GetSubject()
    if err != nil {
        return 0, ErrTokenInvalid
    }
    uid, err := strconv.ParseUint(sub, 10, 64)
    if err != nil || uid == 0 {
        return 0, ErrTokenInvalid
    }
    return uid, nil
}

// HashToken returns the SHA‑256 hash of a raw token as a hex string. Only
// the hash is stored so a leaked sessions table cannot be replayed.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// HashesEqual compares two token hashes in constant time.
func HashesEqual(a, b string) bool {
    return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
