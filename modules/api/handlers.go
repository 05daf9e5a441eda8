package api

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/example/nextshop-catalog/domain/item"
	"github.com/example/nextshop-catalog/modules/auth"
	"github.com/example/nextshop-catalog/modules/catalog"
	"github.com/gofiber/fiber/v2"
)

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Secure   bool
	SameSite string
}

// CookieConfigFor returns the cookie attributes for an environment.
// Production serves a cross-site frontend over HTTPS.
func CookieConfigFor(environment string) CookieConfig {
	if environment == "production" {
		return CookieConfig{Secure: true, SameSite: fiber.CookieSameSiteNoneMode}
	}
	return CookieConfig{Secure: false, SameSite: fiber.CookieSameSiteLaxMode}
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	catalog     catalog.CatalogPort
	auth        auth.AuthPort
	cookies     CookieConfig
	environment string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(catalogPort catalog.CatalogPort, authPort auth.AuthPort, environment string) *Handlers {
	return &Handlers{
		catalog:     catalogPort,
		auth:        authPort,
		cookies:     CookieConfigFor(environment),
		environment: environment,
	}
}

// Status reports that the service is up.
func (h *Handlers) Status(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Message:     "NextShop Backend API is running!",
		Timestamp:   time.Now().UTC(),
		Environment: h.environment,
	})
}

// ListItems returns the whole catalog.
func (h *Handlers) ListItems(c *fiber.Ctx) error {
	items, err := h.catalog.ListItems(c.UserContext())
	if err != nil {
		log.Printf("[api] List items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to fetch items"})
	}
	return c.JSON(items)
}

// GetItem returns a single item by id.
func (h *Handlers) GetItem(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Item ID is required"})
	}

	it, err := h.catalog.GetItem(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Item not found"})
		}
		log.Printf("[api] Get item %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to fetch item"})
	}
	return c.JSON(it)
}

// CreateItem appends a new item. It is mounted behind RequireSession.
func (h *Handlers) CreateItem(c *fiber.Ctx) error {
	var req CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	created, err := h.catalog.CreateItem(c.UserContext(), item.Candidate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	})
	if err != nil {
		return h.handleCatalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Login checks the credentials and issues the session cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidCredentials(c)
	}

	resp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Printf("[api] Login: %v", err)
		}
		return invalidCredentials(c)
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		MaxAge:   int(resp.ExpiresIn),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	})

	return c.JSON(LoginResponse{
		OK:        true,
		Message:   "Login successful",
		Token:     resp.Token,
		ExpiresIn: resp.ExpiresIn,
		User:      resp.User,
	})
}

// Logout revokes every presented session and clears the cookie. It never fails.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	for _, token := range SessionTokens(c) {
		if err := h.auth.Logout(c.UserContext(), token); err != nil {
			log.Printf("[api] Logout: %v", err)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-24 * time.Hour),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	})

	return c.JSON(MessageResponse{OK: true, Message: "Logout successful"})
}

// handleCatalogError maps catalog errors to responses without exposing internals.
func (h *Handlers) handleCatalogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, catalog.ErrMissingFields):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Missing required fields"})
	case errors.Is(err, catalog.ErrInvalidPrice):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Price must be a positive number"})
	default:
		log.Printf("[api] Create item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to create item"})
	}
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Invalid credentials"})
}
