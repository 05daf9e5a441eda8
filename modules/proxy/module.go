package proxy

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/nextshop-catalog/modules/api"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberproxy "github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// DefaultTimeout bounds a single forwarded request.
const DefaultTimeout = 10 * time.Second

// Config holds proxy configuration.
type Config struct {
	Addr       string
	BackendURL string
	Timeout    time.Duration
}

// ProxyModule forwards item submissions to the catalog API.
type ProxyModule struct {
	config Config
	app    *fiber.App
}

// Compile-time interface checks.
var _ mono.Module = (*ProxyModule)(nil)
var _ mono.HealthCheckableModule = (*ProxyModule)(nil)

// NewModule creates a new ProxyModule.
func NewModule(config Config) *ProxyModule {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	config.BackendURL = strings.TrimRight(config.BackendURL, "/")
	return &ProxyModule{config: config}
}

// Name returns the module name.
func (m *ProxyModule) Name() string {
	return "proxy"
}

// Start launches the proxy listener.
func (m *ProxyModule) Start(ctx context.Context) error {
	if m.config.Addr == "" {
		return fmt.Errorf("proxy address not set")
	}
	if m.config.BackendURL == "" {
		return fmt.Errorf("backend URL not set")
	}

	m.app = m.newApp()

	errChan := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.config.Addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start proxy server: %w", err)
	case <-time.After(100 * time.Millisecond):
		log.Printf("[proxy] Forwarding %s/api/proxy/items to %s/api/items", m.config.Addr, m.config.BackendURL)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts down the proxy listener.
func (m *ProxyModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown proxy server: %w", err)
	}
	return nil
}

// Health returns the health status of the module.
func (m *ProxyModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr":    m.config.Addr,
			"backend": m.config.BackendURL,
		},
	}
}

func (m *ProxyModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} (proxy)\n",
	}))

	app.Post("/api/proxy/items", m.forwardItems)
	return app
}

// forwardItems relays the request and the upstream reply unchanged.
func (m *ProxyModule) forwardItems(c *fiber.Ctx) error {
	if api.SessionToken(c) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(api.ErrorResponse{Error: "Unauthorized"})
	}

	target := m.config.BackendURL + "/api/items"
	if err := fiberproxy.DoTimeout(c, target, m.config.Timeout); err != nil {
		log.Printf("[proxy] Forward to %s failed: %v", target, err)
		c.Response().ResetBody()
		return c.Status(fiber.StatusInternalServerError).JSON(api.ErrorResponse{Error: "Failed to connect to backend server"})
	}
	return nil
}
