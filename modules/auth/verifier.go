package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/nextshop-catalog/domain/identity"
)

// ErrInvalidCredentials is returned when login credentials are invalid.
var ErrInvalidCredentials = errors.New("invalid email or password")

// CredentialVerifier checks an identifier/secret pair.
type CredentialVerifier interface {
	// Verify returns the matching identity or ErrInvalidCredentials.
	Verify(ctx context.Context, email, password string) (*identity.Identity, error)
}

// AdminRecord is the single account accepted by login.
type AdminRecord struct {
	ID       string
	Name     string
	Email    string
	Password string
}

// DefaultAdminRecord returns the demo identity.
func DefaultAdminRecord() AdminRecord {
	return AdminRecord{
		ID:       "1",
		Name:     "Admin User",
		Email:    "admin@gmail.com",
		Password: "123456",
	}
}

// Identity returns the public view of the record.
func (r AdminRecord) Identity() identity.Identity {
	return identity.Identity{ID: r.ID, Name: r.Name, Email: r.Email}
}

// StaticVerifier compares credentials against one configured admin record.
// Only the bcrypt hash of the password is kept.
type StaticVerifier struct {
	who    identity.Identity
	hash   string
	hasher *PasswordHasher
}

// NewStaticVerifier hashes the record's password and returns a verifier for it.
func NewStaticVerifier(record AdminRecord, hasher *PasswordHasher) (*StaticVerifier, error) {
	if record.Email == "" || record.Password == "" {
		return nil, fmt.Errorf("admin record requires email and password")
	}
	hash, err := hasher.Hash(record.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &StaticVerifier{
		who:    record.Identity(),
		hash:   hash,
		hasher: hasher,
	}, nil
}

// Verify implements CredentialVerifier.
func (v *StaticVerifier) Verify(_ context.Context, email, password string) (*identity.Identity, error) {
	// The hash comparison runs whether or not the e-mail matches.
	ok := v.hasher.Verify(password, v.hash)
	if email != v.who.Email || !ok {
		return nil, ErrInvalidCredentials
	}
	who := v.who
	return &who, nil
}
