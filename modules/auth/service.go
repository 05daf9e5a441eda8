package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/nextshop-catalog/domain/identity"
)

// Decision is the outcome of an authorization check.
type Decision string

const (
	// DecisionAllow means the credential is valid for the demo identity.
	DecisionAllow Decision = "allow"
	// DecisionAnonymous means no credential was presented.
	DecisionAnonymous Decision = "anonymous"
	// DecisionDenied means a credential was presented but is not acceptable.
	DecisionDenied Decision = "denied"
)

// Session is a freshly minted login session.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  identity.Identity
}

// Authorization is the result of Authorize.
// Reason is for logs only and is never sent to clients.
type Authorization struct {
	Decision Decision
	Claims   *identity.Claims
	Reason   string
}

// Allowed reports whether the decision is DecisionAllow.
func (a Authorization) Allowed() bool {
	return a.Decision == DecisionAllow
}

// AuthService implements login, logout and authorization.
type AuthService struct {
	verifier CredentialVerifier
	tokens   *TokenManager
	revoked  RevocationList
	admin    identity.Identity
}

// NewAuthService creates a new AuthService.
// Only tokens naming admin are ever authorized.
func NewAuthService(verifier CredentialVerifier, tokens *TokenManager, revoked RevocationList, admin identity.Identity) *AuthService {
	return &AuthService{
		verifier: verifier,
		tokens:   tokens,
		revoked:  revoked,
		admin:    admin,
	}
}

// Login verifies the credentials and mints a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	who, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}

	token, claims, err := s.tokens.Issue(*who)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Identity:  *who,
	}, nil
}

// Logout revokes the token until its expiry. Invalid or empty tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Authorize decides whether token may perform protected operations. It never fails.
func (s *AuthService) Authorize(ctx context.Context, token string) Authorization {
	if token == "" {
		return Authorization{Decision: DecisionAnonymous, Reason: "no credential"}
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return Authorization{Decision: DecisionDenied, Reason: err.Error()}
	}

	if claims.Subject != s.admin.ID || claims.Email != s.admin.Email {
		return Authorization{Decision: DecisionDenied, Reason: "unknown identity"}
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		log.Printf("[auth] Revocation check failed, denying: %v", err)
		return Authorization{Decision: DecisionDenied, Reason: "revocation check failed"}
	}
	if revoked {
		return Authorization{Decision: DecisionDenied, Reason: "session revoked"}
	}

	return Authorization{Decision: DecisionAllow, Claims: claims.Claims()}
}

// SessionTTL returns the lifetime of issued sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}
