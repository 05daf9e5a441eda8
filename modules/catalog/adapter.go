package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/nextshop-catalog/domain/item"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// CatalogPort defines the catalog operations other modules use.
type CatalogPort interface {
	ListItems(ctx context.Context) ([]item.Item, error)
	GetItem(ctx context.Context, id string) (*item.Item, error)
	CreateItem(ctx context.Context, candidate item.Candidate) (*item.Item, error)
}

// CatalogAdapter implements CatalogPort using the service container.
type CatalogAdapter struct {
	container mono.ServiceContainer
}

// NewCatalogAdapter creates a new CatalogAdapter.
func NewCatalogAdapter(container mono.ServiceContainer) *CatalogAdapter {
	return &CatalogAdapter{
		container: container,
	}
}

// ListItems returns every item in the catalog.
func (a *CatalogAdapter) ListItems(ctx context.Context) ([]item.Item, error) {
	req := ListItemsRequest{}
	var resp ListItemsResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-items",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-items request failed: %w", err)
	}

	if resp.Items == nil {
		return []item.Item{}, nil
	}
	return resp.Items, nil
}

// GetItem returns the item with the given id, or ErrItemNotFound.
func (a *CatalogAdapter) GetItem(ctx context.Context, id string) (*item.Item, error) {
	req := GetItemRequest{ID: id}
	var resp GetItemResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-item",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-item request failed: %w", err)
	}

	if !resp.Found || resp.Item == nil {
		return nil, ErrItemNotFound
	}
	return resp.Item, nil
}

// CreateItem submits a candidate. Rejections come back as the package's sentinel errors.
func (a *CatalogAdapter) CreateItem(ctx context.Context, candidate item.Candidate) (*item.Item, error) {
	req := CreateItemRequest{Candidate: candidate}
	var resp CreateItemResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-item",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("create-item request failed: %w", err)
	}

	switch resp.Code {
	case "":
	case CodeMissingFields:
		return nil, ErrMissingFields
	case CodeInvalidPrice:
		return nil, ErrInvalidPrice
	default:
		return nil, fmt.Errorf("%w: %s", ErrPersistence, resp.Error)
	}

	if resp.Item == nil {
		return nil, fmt.Errorf("create-item returned no item")
	}
	return resp.Item, nil
}
