package auth

import (
	"time"

	"github.com/example/nextshop-catalog/domain/identity"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response.
// OK is false and Error is set when the credentials were rejected.
type LoginResponse struct {
	OK        bool               `json:"ok"`
	Token     string             `json:"token,omitempty"`
	ExpiresAt time.Time          `json:"expires_at,omitempty"`
	ExpiresIn int64              `json:"expires_in,omitempty"`
	User      *identity.Identity `json:"user,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	Token string `json:"token"`
}

// LogoutResponse represents a logout response.
type LogoutResponse struct {
	OK bool `json:"ok"`
}

// AuthorizeRequest represents an authorization request.
type AuthorizeRequest struct {
	Token string `json:"token"`
}

// AuthorizeResponse represents an authorization response.
type AuthorizeResponse struct {
	Decision Decision         `json:"decision"`
	Claims   *identity.Claims `json:"claims,omitempty"`
}
