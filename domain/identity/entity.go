package identity

import (
	"time"
)

// Identity is an authenticated principal.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Account is the persisted form of an identity with its password hash.
type Account struct {
	ID           string `gorm:"primaryKey;type:text"`
	Email        string `gorm:"uniqueIndex;not null;type:text"`
	Name         string `gorm:"not null;type:text"`
	PasswordHash string `gorm:"not null;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the Account entity.
func (Account) TableName() string {
	return "accounts"
}

// Identity returns the public view of the account.
func (a *Account) Identity() Identity {
	return Identity{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
	}
}

// Claims represents the verified content of a session token.
type Claims struct {
	TokenID   string    `json:"token_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}
