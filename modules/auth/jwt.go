package auth

import (
	"errors"
	"time"

	"github.com/example/nextshop-catalog/domain/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// SessionConfig holds session token configuration.
type SessionConfig struct {
	SecretKey string
	TTL       time.Duration
	Issuer    string
}

// DefaultSessionConfig returns a default session configuration.
// In production, the secret key should be loaded from environment variables.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SecretKey: "nextshop-dev-secret-change-in-production",
		TTL:       24 * time.Hour,
		Issuer:    "nextshop-catalog",
	}
}

// SessionClaims represents the custom claims for session tokens.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Claims converts the token claims to the domain representation.
func (c *SessionClaims) Claims() *identity.Claims {
	claims := &identity.Claims{
		TokenID: c.ID,
		UserID:  c.Subject,
		Email:   c.Email,
		Name:    c.Name,
	}
	if c.ExpiresAt != nil {
		claims.ExpiresAt = c.ExpiresAt.Time
	}
	return claims
}

// TokenManager issues and validates signed session tokens.
type TokenManager struct {
	config SessionConfig
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager with the given configuration.
func NewTokenManager(config SessionConfig) *TokenManager {
	return &TokenManager{
		config: config,
		now:    time.Now,
	}
}

// Issue mints a session token for the identity.
func (m *TokenManager) Issue(who identity.Identity) (string, *SessionClaims, error) {
	now := m.now()
	claims := &SessionClaims{
		Email: who.Email,
		Name:  who.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Subject:   who.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Validate checks signature, issuer and freshness, and returns the claims.
func (m *TokenManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	}, jwt.WithIssuer(m.config.Issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TTL returns the session lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.config.TTL
}
