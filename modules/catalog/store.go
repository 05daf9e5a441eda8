package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/nextshop-catalog/domain/item"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
)

// ErrPersistence is returned when the catalog document cannot be read for an
// append or cannot be written.
var ErrPersistence = errors.New("failed to persist catalog")

// Revision is the document as written by one successful append.
type Revision struct {
	Data  []byte
	Count int
}

// FileStore keeps the catalog as a single JSON document on disk.
// Appends are serialized by a mutex; reads are coalesced and never fail.
// An append never replaces a document it could not parse.
type FileStore struct {
	path   string
	logger types.Logger
	mu     sync.Mutex
	reads  singleflight.Group
}

// NewFileStore creates a FileStore backed by the document at path.
func NewFileStore(path string, logger types.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Path returns the location of the backing document.
func (s *FileStore) Path() string {
	return s.path
}

// ReadAll returns every item in insertion order.
// A missing, unreadable or corrupt document yields an empty catalog.
func (s *FileStore) ReadAll(_ context.Context) []item.Item {
	val, _, _ := s.reads.Do(s.path, func() (any, error) {
		return s.load(), nil
	})

	items, _ := val.([]item.Item)
	// Callers may append to the result; hand out a private copy.
	out := make([]item.Item, len(items))
	copy(out, items)
	return out
}

// Append adds it to the document and rewrites the whole file.
// The document on disk is unchanged when the append fails.
func (s *FileStore) Append(_ context.Context, it item.Item) (Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readDocument()
	if err != nil {
		return Revision{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	items = append(items, it)
	data, err := encode(items)
	if err != nil {
		return Revision{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.write(data); err != nil {
		return Revision{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	// Readers arriving after this point must not join a read of the old document.
	s.reads.Forget(s.path)
	return Revision{Data: data, Count: len(items)}, nil
}

func (s *FileStore) load() []item.Item {
	items, err := s.readDocument()
	if err != nil {
		s.logger.Warn("Catalog document unreadable, serving empty catalog", "path", s.path, "error", err)
		return []item.Item{}
	}
	return items
}

// readDocument parses the document. A missing or blank file is an empty catalog.
func (s *FileStore) readDocument() ([]item.Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []item.Item{}, nil
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []item.Item{}, nil
	}

	var items []item.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if items == nil {
		items = []item.Item{}
	}
	return items, nil
}

func (s *FileStore) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func encode(items []item.Item) ([]byte, error) {
	if items == nil {
		items = []item.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return data, nil
}
