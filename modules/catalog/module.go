package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
)

// SnapshotPluginAlias is the alias the snapshot storage plugin is registered under.
const SnapshotPluginAlias = "snapshots"

// Config holds catalog module configuration.
type Config struct {
	DataPath string
}

// CatalogModule owns the item catalog and serves it over request-reply services.
type CatalogModule struct {
	config  Config
	logger  types.Logger
	store   *FileStore
	service *Service
	storage *fsjetstream.PluginModule
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*CatalogModule)(nil)
	_ mono.ServiceProviderModule = (*CatalogModule)(nil)
	_ mono.HealthCheckableModule = (*CatalogModule)(nil)
	_ mono.UsePluginModule       = (*CatalogModule)(nil)
)

// NewModule creates a new CatalogModule.
func NewModule(config Config, logger types.Logger) *CatalogModule {
	return &CatalogModule{
		config: config,
		logger: logger.WithModule("catalog"),
	}
}

// Name returns the module name.
func (m *CatalogModule) Name() string {
	return "catalog"
}

// SetPlugin receives the optional snapshot storage plugin.
func (m *CatalogModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != SnapshotPluginAlias {
		return
	}
	storage, ok := plugin.(*fsjetstream.PluginModule)
	if !ok {
		m.logger.Error("Invalid plugin type for snapshots",
			"alias", alias,
			"expected", "*fsjetstream.PluginModule")
		return
	}
	m.storage = storage
	m.logger.Info("Received snapshot plugin", "alias", alias)
}

// Start opens the catalog document.
func (m *CatalogModule) Start(_ context.Context) error {
	if m.config.DataPath == "" {
		return fmt.Errorf("catalog data path not configured")
	}

	var snapshots Snapshotter
	if m.storage != nil {
		bucket := m.storage.Bucket(SnapshotBucket)
		if bucket == nil {
			return fmt.Errorf("bucket '%s' not found in snapshot plugin", SnapshotBucket)
		}
		snapshots = NewBucketSnapshotter(bucket)
	}

	m.store = NewFileStore(m.config.DataPath, m.logger)
	m.service = NewService(m.store, snapshots, m.logger)

	m.logger.Info("Catalog module started",
		"document", m.config.DataPath,
		"items", len(m.store.ReadAll(context.Background())),
		"snapshots", snapshots != nil)
	return nil
}

// Stop shuts down the module.
func (m *CatalogModule) Stop(_ context.Context) error {
	m.logger.Info("Catalog module stopped")
	return nil
}

// Health reports whether the document directory is usable.
func (m *CatalogModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "catalog not initialized",
		}
	}

	dir := filepath.Dir(m.store.Path())
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("data path parent is not a directory: %s", dir),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"document": m.store.Path(),
			"items":    len(m.store.ReadAll(ctx)),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *CatalogModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"list-items",
		json.Unmarshal,
		json.Marshal,
		m.handleListItems,
	); err != nil {
		return fmt.Errorf("failed to register list-items service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"get-item",
		json.Unmarshal,
		json.Marshal,
		m.handleGetItem,
	); err != nil {
		return fmt.Errorf("failed to register get-item service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"create-item",
		json.Unmarshal,
		json.Marshal,
		m.handleCreateItem,
	); err != nil {
		return fmt.Errorf("failed to register create-item service: %w", err)
	}

	m.logger.Info("Registered services", "services", "list-items, get-item, create-item")
	return nil
}

func (m *CatalogModule) handleListItems(ctx context.Context, _ ListItemsRequest, _ *mono.Msg) (ListItemsResponse, error) {
	return ListItemsResponse{Items: m.service.ListAll(ctx)}, nil
}

func (m *CatalogModule) handleGetItem(ctx context.Context, req GetItemRequest, _ *mono.Msg) (GetItemResponse, error) {
	it, err := m.service.GetByID(ctx, req.ID)
	if err != nil {
		return GetItemResponse{Found: false}, nil
	}
	return GetItemResponse{Found: true, Item: &it}, nil
}

// handleCreateItem reports rejections in the reply so callers can map them to statuses.
func (m *CatalogModule) handleCreateItem(ctx context.Context, req CreateItemRequest, _ *mono.Msg) (CreateItemResponse, error) {
	it, err := m.service.Append(ctx, req.Candidate)
	if err != nil {
		return rejection(err, m.logger), nil
	}
	return CreateItemResponse{Item: &it}, nil
}

func rejection(err error, logger types.Logger) CreateItemResponse {
	switch {
	case errors.Is(err, ErrMissingFields):
		return CreateItemResponse{Code: CodeMissingFields, Error: err.Error()}
	case errors.Is(err, ErrInvalidPrice):
		return CreateItemResponse{Code: CodeInvalidPrice, Error: err.Error()}
	default:
		logger.Error("Failed to persist item", "error", err)
		return CreateItemResponse{Code: CodePersistence, Error: ErrPersistence.Error()}
	}
}
