package catalog

import (
	"github.com/example/nextshop-catalog/domain/item"
)

// Reply codes carried by catalog service responses.
const (
	CodeMissingFields = "missing_fields"
	CodeInvalidPrice  = "invalid_price"
	CodePersistence   = "persistence"
)

// ListItemsRequest represents a list-items request.
type ListItemsRequest struct{}

// ListItemsResponse represents a list-items response.
type ListItemsResponse struct {
	Items []item.Item `json:"items"`
}

// GetItemRequest represents a get-item request.
type GetItemRequest struct {
	ID string `json:"id"`
}

// GetItemResponse represents a get-item response.
// Found is false when no item has the requested id.
type GetItemResponse struct {
	Found bool       `json:"found"`
	Item  *item.Item `json:"item,omitempty"`
}

// CreateItemRequest represents a create-item request.
type CreateItemRequest struct {
	Candidate item.Candidate `json:"candidate"`
}

// CreateItemResponse represents a create-item response.
// Code and Error are set instead of Item when the item was rejected.
type CreateItemResponse struct {
	Item  *item.Item `json:"item,omitempty"`
	Code  string     `json:"code,omitempty"`
	Error string     `json:"error,omitempty"`
}
