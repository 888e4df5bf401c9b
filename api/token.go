package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. Refresh tokens additionally live in the refreshTokens
// collection; a signature-valid refresh token with no stored record is dead.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrTokenExpired is returned when a token is well formed and correctly
// signed but past its expiry, so callers can tell clients to rotate rather
// than re-authenticate.
var ErrTokenExpired = errors.New("token expired")

// AccessClaims is the payload carried by short-lived access tokens
type AccessClaims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload carried by refresh tokens. TokenVersion is
// compared against the user document on rotation; a mismatch kills the
// whole token line.
type RefreshClaims struct {
	UserID       string `json:"id"`
	TokenVersion int    `json:"tokenVersion"`
	jwt.RegisteredClaims
}

// TokenPair is one issued access/refresh pair
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenManager signs and verifies the two token families with distinct
// secrets, so a leaked access secret cannot forge refresh tokens and vice
// versa.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewTokenManager creates a token manager from the two signing secrets
func NewTokenManager(accessSecret, refreshSecret string) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// IssuePair signs a fresh access/refresh pair for the given identity
func (tm *TokenManager) IssuePair(userID, email, fullName, role string, tokenVersion int) (TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID:   userID,
		Email:    email,
		FullName: fullName,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	})
	accessToken, err := access.SignedString(tm.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		UserID:       userID,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
		},
	})
	refreshToken, err := refresh.SignedString(tm.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess parses and validates an access token. Expired tokens return
// ErrTokenExpired; anything else invalid returns the parse error.
func (tm *TokenManager) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	err := tm.verify(token, claims, tm.accessSecret)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token against the refresh
// secret. Storage-level checks (live record, token version) are the
// caller's responsibility.
func (tm *TokenManager) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	err := tm.verify(token, claims, tm.refreshSecret)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (tm *TokenManager) verify(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	return nil
}
