// ABOUTME: JWT session token signing and verification for API key holders
// ABOUTME: Uses HS256 with the process-wide secret and a required exp claim

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted signing secret size in bytes.
const MinSecretLength = 32

// TokenTTL is the lifetime of every session token.
const TokenTTL = time.Hour

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
	ErrMissingToken = errors.New("missing token")
	ErrWeakSecret   = errors.New("signing secret too short")
)

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (apiKey string, err error)
}

// Claims is the payload of a session token.
type Claims struct {
	APIKey string `json:"apiKey"`
	jwt.RegisteredClaims
}

// VerifierOption configures a JWTVerifier.
type VerifierOption func(*JWTVerifier)

// WithClock overrides the time source used for issuing and checking tokens.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *JWTVerifier) {
		v.now = now
	}
}

// JWTVerifier implements TokenVerifier using HS256 signed JWTs
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewJWTVerifier creates a new JWT verifier with the given secret.
// Secrets shorter than MinSecretLength are rejected.
func NewJWTVerifier(secret []byte, opts ...VerifierOption) (*JWTVerifier, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrWeakSecret, len(secret), MinSecretLength)
	}
	v := &JWTVerifier{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify validates the token and extracts the API key from the "apiKey" claim
func (v *JWTVerifier) Verify(tokenString string) (apiKey string, err error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)

	if err != nil {
		// Check if it's specifically an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.APIKey == "" {
		return "", fmt.Errorf("%w: %w: apiKey", ErrInvalidToken, ErrMissingClaim)
	}

	return claims.APIKey, nil
}

// Generate creates a new JWT token for the given API key with expiration
func (v *JWTVerifier) Generate(apiKey string, expiresIn time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		APIKey: apiKey,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
