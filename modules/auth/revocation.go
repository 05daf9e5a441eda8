package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/storage"
)

// RevocationList records session tokens that were logged out before they expired.
type RevocationList interface {
	// Revoke marks tokenID as unusable until the given time.
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	// IsRevoked reports whether tokenID was revoked and has not yet expired.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocationList keeps revoked token ids in process memory.
type MemoryRevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationList creates an empty in-memory revocation list.
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke implements RevocationList.
func (l *MemoryRevocationList) Revoke(_ context.Context, tokenID string, until time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune()
	if until.After(l.now()) {
		l.entries[tokenID] = until
	}
	return nil
}

// IsRevoked implements RevocationList.
func (l *MemoryRevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !until.After(l.now()) {
		delete(l.entries, tokenID)
		return false, nil
	}
	return true, nil
}

// Len returns the number of live entries.
func (l *MemoryRevocationList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	return len(l.entries)
}

// prune drops expired entries. Callers hold l.mu.
func (l *MemoryRevocationList) prune() {
	now := l.now()
	for id, until := range l.entries {
		if !until.After(now) {
			delete(l.entries, id)
		}
	}
}

// StorageRevocationList keeps revoked token ids in a key-value storage with per-key TTL.
type StorageRevocationList struct {
	storage storage.Storage
	prefix  string
	now     func() time.Time
}

// NewStorageRevocationList wraps s. Keys are namespaced with prefix.
func NewStorageRevocationList(s storage.Storage, prefix string) *StorageRevocationList {
	return &StorageRevocationList{
		storage: s,
		prefix:  prefix,
		now:     time.Now,
	}
}

// Revoke implements RevocationList.
func (l *StorageRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(l.now())
	if ttl <= 0 {
		return nil
	}
	if err := l.storage.SetWithContext(ctx, l.prefix+tokenID, []byte("1"), ttl); err != nil {
		return fmt.Errorf("revocation store set error: %w", err)
	}
	return nil
}

// IsRevoked implements RevocationList.
func (l *StorageRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, err := l.storage.GetWithContext(ctx, l.prefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("revocation store get error: %w", err)
	}
	// nil or empty means the key does not exist
	return len(data) > 0, nil
}
