package api

import (
	"encoding/json"
	"time"

	"github.com/example/nextshop-catalog/domain/identity"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	OK        bool               `json:"ok"`
	Message   string             `json:"message"`
	Token     string             `json:"token"`
	ExpiresIn int64              `json:"expiresIn"`
	User      *identity.Identity `json:"user"`
}

// MessageResponse represents a plain acknowledgement.
type MessageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// CreateItemRequest represents an item submission.
type CreateItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Image       string          `json:"image"`
}

// StatusResponse is returned by the root endpoint.
type StatusResponse struct {
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
