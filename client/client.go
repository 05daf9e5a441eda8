// Package client calls the catalog HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/example/nextshop-catalog/domain/item"
	"github.com/example/nextshop-catalog/modules/api"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// DefaultTimeout bounds every call made by a Client.
const DefaultTimeout = 10 * time.Second

var (
	// ErrTimeout is returned when the server did not answer in time.
	ErrTimeout = errors.New("request timed out")
	// ErrNetwork is returned when the server could not be reached.
	ErrNetwork = errors.New("network error")
	// ErrNotFound is returned by GetItem for unknown ids.
	ErrNotFound = errors.New("item not found")
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// NewItem is an item submission. Price is sent as given and validated by the server.
type NewItem struct {
	Name        string
	Description string
	Price       string
	Image       string
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a Bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Client is a catalog API client. Calls are never retried.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListItems returns every item in the catalog.
func (c *Client) ListItems(ctx context.Context) ([]item.Item, error) {
	var items []item.Item
	if err := c.do(ctx, fiber.MethodGet, "/api/items", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []item.Item{}
	}
	return items, nil
}

// GetItem returns one item or ErrNotFound.
func (c *Client) GetItem(ctx context.Context, id string) (*item.Item, error) {
	var it item.Item
	err := c.do(ctx, fiber.MethodGet, "/api/items/"+url.PathEscape(id), nil, &it)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == fiber.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// CreateItem submits a new item. It needs a token.
func (c *Client) CreateItem(ctx context.Context, in NewItem) (*item.Item, error) {
	price, err := json.Marshal(in.Price)
	if err != nil {
		return nil, err
	}
	req := api.CreateItemRequest{
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		Image:       in.Image,
	}

	var it item.Item
	if err := c.do(ctx, fiber.MethodPost, "/api/items", req, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	req := api.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, fiber.MethodPost, "/api/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout revokes the client's token.
func (c *Client) Logout(ctx context.Context) error {
	var resp api.MessageResponse
	return c.do(ctx, fiber.MethodPost, "/api/logout", nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	timeout, err := c.budget(ctx)
	if err != nil {
		return err
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if body != nil {
		a.JSON(body)
	}
	a.Timeout(timeout)

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	// The agent cannot be interrupted; an abandoned exchange ends at its timeout.
	done := make(chan exchange, 1)
	go func() {
		var r exchange
		r.status, r.data, r.errs = a.Bytes()
		done <- r
	}()

	var r exchange
	select {
	case <-ctx.Done():
		return contextError(ctx.Err())
	case r = <-done:
	}
	status, data := r.status, r.data
	if len(r.errs) > 0 {
		return classify(r.errs[0])
	}

	if status < 200 || status > 299 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(data, &errResp); err != nil || errResp.Error == "" {
			errResp.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: status, Message: errResp.Error}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// exchange is the outcome of one agent round trip.
type exchange struct {
	status int
	data   []byte
	errs   []error
}

// budget returns the timeout for one call, shortened by any context deadline.
func (c *Client) budget(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, contextError(err)
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			if left <= 0 {
				return 0, ErrTimeout
			}
			timeout = left
		}
	}
	return timeout, nil
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func classify(err error) error {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
