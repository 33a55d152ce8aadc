// Package auth provides password hashing and per-user JWT access tokens.
//
// Each account carries its own random signing secret, so revoking a user's
// sessions only requires rotating that one secret.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenLifetime is how long an access token stays valid after issue.
	TokenLifetime = time.Hour
	// RenewAhead is the window before expiry in which the server hands the
	// client a fresh token alongside the response.
	RenewAhead = 10 * time.Minute

	issuer        = "ganttline"
	secretKeyLen  = 64
	signingMethod = "HS256"
)

var (
	// ErrTokenExpired indicates the token was well formed but past its expiry.
	ErrTokenExpired = errors.New("access token expired")
	// ErrTokenInvalid indicates the token failed signature or claim checks.
	ErrTokenInvalid = errors.New("access token invalid")
)

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSecretKey returns a random hex string used as a per-user JWT
// signing secret.
func GenerateSecretKey() (string, error) {
	buf := make([]byte, secretKeyLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewAccessToken mints a signed HS256 token for the given username.
func NewAccessToken(username, secret string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Subject extracts the username claim from a token without verifying the
// signature. The server uses it to look up the account whose secret then
// verifies the token.
func Subject(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{signingMethod}))
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject claim", ErrTokenInvalid)
	}
	return claims.Subject, nil
}

// VerifyAccessToken validates the token against the user's secret. It returns
// the token expiry so callers can decide whether to renew.
func VerifyAccessToken(tokenString, secret string, now time.Time) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return time.Time{}, ErrTokenExpired
		}
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing expiry claim", ErrTokenInvalid)
	}
	return claims.ExpiresAt.Time, nil
}

// NeedsRenewal reports whether a token expiring at expiresAt is inside the
// renew-ahead window.
func NeedsRenewal(expiresAt, now time.Time) bool {
	return expiresAt.Before(now.Add(RenewAhead))
}
