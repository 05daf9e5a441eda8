package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/nextshop-catalog/domain/item"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

var (
	// ErrMissingFields is returned when name, description or price is absent.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidPrice is returned when price is not a positive number.
	ErrInvalidPrice = errors.New("price must be a positive number")
	// ErrItemNotFound is returned when no item has the requested id.
	ErrItemNotFound = errors.New("item not found")
)

// Store is the persistence the catalog service needs.
type Store interface {
	ReadAll(ctx context.Context) []item.Item
	Append(ctx context.Context, it item.Item) (Revision, error)
}

// Snapshotter receives a copy of the document after every successful append.
type Snapshotter interface {
	Save(ctx context.Context, data []byte, count int) error
}

// Service implements catalog business logic over a Store.
type Service struct {
	store     Store
	snapshots Snapshotter
	logger    types.Logger
	newID     func() string
	now       func() time.Time

	// snapMu orders snapshot saves; savedCount is the size of the newest saved revision.
	snapMu     sync.Mutex
	savedCount int
}

// NewService creates a catalog Service. snapshots may be nil.
func NewService(store Store, snapshots Snapshotter, logger types.Logger) *Service {
	return &Service{
		store:     store,
		snapshots: snapshots,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// ListAll returns all items in insertion order.
func (s *Service) ListAll(ctx context.Context) []item.Item {
	return s.store.ReadAll(ctx)
}

// GetByID returns the item with the given id or ErrItemNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (item.Item, error) {
	for _, it := range s.store.ReadAll(ctx) {
		if it.ID == id {
			return it, nil
		}
	}
	return item.Item{}, ErrItemNotFound
}

// Append validates the candidate, assigns id and timestamp, and persists it.
func (s *Service) Append(ctx context.Context, c item.Candidate) (item.Item, error) {
	name := strings.TrimSpace(c.Name)
	description := strings.TrimSpace(c.Description)
	if name == "" || description == "" || isAbsent(c.Price) {
		return item.Item{}, ErrMissingFields
	}

	price, err := parsePrice(c.Price)
	if err != nil {
		return item.Item{}, err
	}

	image := strings.TrimSpace(c.Image)
	if image == "" {
		image = item.PlaceholderImage
	}

	existing := s.store.ReadAll(ctx)
	it := item.Item{
		ID:          s.uniqueID(existing),
		Name:        name,
		Description: description,
		Price:       price,
		Image:       image,
		CreatedAt:   s.now().UTC(),
	}

	rev, err := s.store.Append(ctx, it)
	if err != nil {
		return item.Item{}, err
	}

	s.logger.Info("Item created", "id", it.ID, "name", it.Name, "price", it.Price)
	s.snapshot(ctx, rev)
	return it, nil
}

func (s *Service) uniqueID(existing []item.Item) string {
	taken := make(map[string]struct{}, len(existing))
	for _, it := range existing {
		taken[it.ID] = struct{}{}
	}
	for {
		id := s.newID()
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

// snapshot saves rev unless a newer revision was already saved.
// The document only grows, so a larger count is always newer.
func (s *Service) snapshot(ctx context.Context, rev Revision) {
	if s.snapshots == nil {
		return
	}

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	if rev.Count <= s.savedCount {
		return
	}
	if err := s.snapshots.Save(ctx, rev.Data, rev.Count); err != nil {
		s.logger.Warn("Failed to store catalog snapshot", "error", err)
		return
	}
	s.savedCount = rev.Count
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}

// parsePrice accepts a JSON number or a numeric JSON string.
func parsePrice(raw json.RawMessage) (float64, error) {
	var price float64
	if err := json.Unmarshal(raw, &price); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, ErrInvalidPrice
		}
		price, err = strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, str)
		}
	}

	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidPrice
	}
	return price, nil
}
