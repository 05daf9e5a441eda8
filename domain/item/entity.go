package item

import (
	"encoding/json"
	"time"
)

// PlaceholderImage is used when an item is created without an image URL.
const PlaceholderImage = "https://via.placeholder.com/400x300?text=No+Image"

// Item represents a product record in the catalog.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Candidate is an unvalidated item submission.
// Price stays raw so numeric strings can be coerced during validation.
type Candidate struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price,omitempty"`
	Image       string          `json:"image,omitempty"`
}
