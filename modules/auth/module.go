package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/nextshop-catalog/modules/sessions"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SessionsPluginAlias is the alias the session storage plugin is registered under.
const SessionsPluginAlias = "sessions"

// revokedKeyPrefix namespaces revocation entries in shared storage.
const revokedKeyPrefix = "revoked:"

// Config holds auth module configuration.
type Config struct {
	Admin      AdminRecord
	Session    SessionConfig
	DBPath     string // empty selects the static verifier
	BcryptCost int
}

// AuthModule provides login, logout and authorization services.
type AuthModule struct {
	config   Config
	db       *gorm.DB
	service  *AuthService
	sessions *sessions.PluginModule
	backend  string
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)
var _ mono.UsePluginModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(config Config) *AuthModule {
	return &AuthModule{
		config: config,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// SetPlugin receives the optional session storage plugin.
func (m *AuthModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != SessionsPluginAlias {
		return
	}
	if p, ok := plugin.(*sessions.PluginModule); ok {
		m.sessions = p
		log.Println("[auth] Session storage plugin injected")
	}
}

// Start initializes the verifier, token manager and revocation list.
func (m *AuthModule) Start(ctx context.Context) error {
	hasher := NewPasswordHasher(m.config.BcryptCost)

	verifier, err := m.buildVerifier(ctx, hasher)
	if err != nil {
		return err
	}

	var revoked RevocationList
	if m.sessions != nil && m.sessions.Storage() != nil {
		revoked = NewStorageRevocationList(m.sessions.Storage(), revokedKeyPrefix)
		m.backend = "redis"
	} else {
		revoked = NewMemoryRevocationList()
		m.backend = "memory"
	}

	tokens := NewTokenManager(m.config.Session)
	m.service = NewAuthService(verifier, tokens, revoked, m.config.Admin.Identity())

	log.Printf("[auth] Module started (admin: %s, revocation: %s, session ttl: %s)",
		m.config.Admin.Email, m.backend, tokens.TTL())
	return nil
}

func (m *AuthModule) buildVerifier(ctx context.Context, hasher *PasswordHasher) (CredentialVerifier, error) {
	if m.config.DBPath == "" {
		verifier, err := NewStaticVerifier(m.config.Admin, hasher)
		if err != nil {
			return nil, fmt.Errorf("failed to create verifier: %w", err)
		}
		return verifier, nil
	}

	db, err := gorm.Open(sqlite.Open(m.config.DBPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	repo := NewAccountRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := repo.SeedAdmin(ctx, m.config.Admin, hasher); err != nil {
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	log.Printf("[auth] Accounts stored in %s", m.config.DBPath)
	return NewAccountVerifier(repo, hasher), nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "auth service not initialized",
		}
	}

	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err != nil {
			return mono.HealthStatus{
				Healthy: false,
				Message: fmt.Sprintf("failed to get database connection: %v", err),
			}
		}
		if err := sqlDB.Ping(); err != nil {
			return mono.HealthStatus{
				Healthy: false,
				Message: fmt.Sprintf("database ping failed: %v", err),
			}
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"revocation": m.backend,
			"accounts":   m.config.DBPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"login",
		json.Unmarshal,
		json.Marshal,
		m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"logout",
		json.Unmarshal,
		json.Marshal,
		m.handleLogout,
	); err != nil {
		return fmt.Errorf("failed to register logout service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"authorize",
		json.Unmarshal,
		json.Marshal,
		m.handleAuthorize,
	); err != nil {
		return fmt.Errorf("failed to register authorize service: %w", err)
	}

	log.Printf("[auth] Registered services: login, logout, authorize")
	return nil
}

// handleLogin reports rejected credentials in the reply rather than as an error.
func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	session, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return LoginResponse{OK: false, Error: err.Error()}, nil
		}
		return LoginResponse{}, err
	}

	who := session.Identity
	return LoginResponse{
		OK:        true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		ExpiresIn: int64(time.Until(session.ExpiresAt).Seconds()),
		User:      &who,
	}, nil
}

// handleLogout always succeeds; revocation failures are only logged.
func (m *AuthModule) handleLogout(ctx context.Context, req LogoutRequest, _ *mono.Msg) (LogoutResponse, error) {
	if err := m.service.Logout(ctx, req.Token); err != nil {
		log.Printf("[auth] Logout: %v", err)
	}
	return LogoutResponse{OK: true}, nil
}

func (m *AuthModule) handleAuthorize(ctx context.Context, req AuthorizeRequest, _ *mono.Msg) (AuthorizeResponse, error) {
	result := m.service.Authorize(ctx, req.Token)
	if !result.Allowed() && result.Decision != DecisionAnonymous {
		log.Printf("[auth] Denied credential: %s", result.Reason)
	}
	return AuthorizeResponse{
		Decision: result.Decision,
		Claims:   result.Claims,
	}, nil
}

// LoadConfig loads auth configuration from environment variables.
func LoadConfig() Config {
	config := Config{
		Admin:      DefaultAdminRecord(),
		Session:    DefaultSessionConfig(),
		DBPath:     os.Getenv("AUTH_DB_PATH"),
		BcryptCost: DefaultBcryptCost,
	}

	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		config.Admin.Email = email
	}
	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		config.Admin.Password = password
	}
	if name := os.Getenv("ADMIN_NAME"); name != "" {
		config.Admin.Name = name
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		config.Session.SecretKey = secret
	}
	if issuer := os.Getenv("SESSION_ISSUER"); issuer != "" {
		config.Session.Issuer = issuer
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			config.Session.TTL = d
		} else {
			log.Printf("[auth] Warning: invalid SESSION_TTL %q, using %s", ttl, config.Session.TTL)
		}
	}

	return config
}
