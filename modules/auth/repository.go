package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/nextshop-catalog/domain/identity"
	"gorm.io/gorm"
)

// ErrAccountNotFound is returned when an account is not found.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository handles account persistence using GORM.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{
		db: db,
	}
}

// Migrate creates or updates the accounts table.
func (r *AccountRepository) Migrate() error {
	return r.db.AutoMigrate(&identity.Account{})
}

// FindByEmail finds an account by email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	var account identity.Account
	result := r.db.WithContext(ctx).First(&account, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, result.Error
	}
	return &account, nil
}

// Upsert stores the account, replacing any row with the same id.
func (r *AccountRepository) Upsert(ctx context.Context, account *identity.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// SeedAdmin stores the admin record with a freshly hashed password.
func (r *AccountRepository) SeedAdmin(ctx context.Context, record AdminRecord, hasher *PasswordHasher) error {
	hash, err := hasher.Hash(record.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now().UTC()
	account := &identity.Account{
		ID:           record.ID,
		Email:        record.Email,
		Name:         record.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing, err := r.FindByEmail(ctx, record.Email); err == nil {
		account.CreatedAt = existing.CreatedAt
	}
	return r.Upsert(ctx, account)
}

// AccountVerifier checks credentials against stored accounts.
type AccountVerifier struct {
	repo   *AccountRepository
	hasher *PasswordHasher
}

// NewAccountVerifier creates a new AccountVerifier.
func NewAccountVerifier(repo *AccountRepository, hasher *PasswordHasher) *AccountVerifier {
	return &AccountVerifier{
		repo:   repo,
		hasher: hasher,
	}
}

// Verify implements CredentialVerifier.
func (v *AccountVerifier) Verify(ctx context.Context, email, password string) (*identity.Identity, error) {
	account, err := v.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !v.hasher.Verify(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	who := account.Identity()
	return &who, nil
}
