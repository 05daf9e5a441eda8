package api

import (
	"log"
	"strings"

	"github.com/example/nextshop-catalog/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "session"
	// ClaimsContextKey is the key used to store session claims in the Fiber context.
	ClaimsContextKey = "claims"
)

// SessionToken extracts the session token from the cookie or a Bearer header.
// The cookie wins when both are present.
func SessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}
	return bearerToken(c)
}

// SessionTokens returns every distinct credential on the request, cookie first.
func SessionTokens(c *fiber.Ctx) []string {
	var tokens []string
	cookie := c.Cookies(SessionCookieName)
	if cookie != "" {
		tokens = append(tokens, cookie)
	}
	if bearer := bearerToken(c); bearer != "" && bearer != cookie {
		tokens = append(tokens, bearer)
	}
	return tokens
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// RequireSession rejects requests without an authorized session.
// All denials share one response so clients cannot tell missing from bad credentials.
func RequireSession(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		if token == "" {
			return unauthorized(c)
		}

		resp, err := authAdapter.Authorize(c.UserContext(), token)
		if err != nil {
			log.Printf("[api] Authorization unavailable: %v", err)
			return unauthorized(c)
		}
		if resp.Decision != auth.DecisionAllow {
			return unauthorized(c)
		}

		c.Locals(ClaimsContextKey, resp.Claims)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Unauthorized"})
}
