package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/example/nextshop-catalog/domain/identity"
	"github.com/example/nextshop-catalog/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// mockAuthPort implements auth.AuthPort for testing
type mockAuthPort struct {
	loginFunc     func(ctx context.Context, email, password string) (*auth.LoginResponse, error)
	logoutFunc    func(ctx context.Context, token string) error
	authorizeFunc func(ctx context.Context, token string) (*auth.AuthorizeResponse, error)
}

func (m *mockAuthPort) Login(ctx context.Context, email, password string) (*auth.LoginResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) Logout(ctx context.Context, token string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthPort) Authorize(ctx context.Context, token string) (*auth.AuthorizeResponse, error) {
	if m.authorizeFunc != nil {
		return m.authorizeFunc(ctx, token)
	}
	return nil, errors.New("not implemented")
}

func allowToken(valid string) func(ctx context.Context, token string) (*auth.AuthorizeResponse, error) {
	return func(ctx context.Context, token string) (*auth.AuthorizeResponse, error) {
		if token != valid {
			return &auth.AuthorizeResponse{Decision: auth.DecisionDenied}, nil
		}
		return &auth.AuthorizeResponse{
			Decision: auth.DecisionAllow,
			Claims:   &identity.Claims{UserID: "1", Email: "admin@gmail.com"},
		}, nil
	}
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name           string
		cookie         string
		authHeader     string
		mockAuth       *mockAuthPort
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no credential",
			mockAuth:       &mockAuthPort{},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Unauthorized"`,
		},
		{
			name:           "valid cookie",
			cookie:         "good-token",
			mockAuth:       &mockAuthPort{authorizeFunc: allowToken("good-token")},
			expectedStatus: http.StatusOK,
			expectedBody:   `"authenticated"`,
		},
		{
			name:           "valid bearer token",
			authHeader:     "Bearer good-token",
			mockAuth:       &mockAuthPort{authorizeFunc: allowToken("good-token")},
			expectedStatus: http.StatusOK,
			expectedBody:   `"authenticated"`,
		},
		{
			name:           "non bearer scheme",
			authHeader:     "Basic good-token",
			mockAuth:       &mockAuthPort{authorizeFunc: allowToken("good-token")},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Unauthorized"`,
		},
		{
			name:           "denied token",
			cookie:         "forged",
			mockAuth:       &mockAuthPort{authorizeFunc: allowToken("good-token")},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Unauthorized"`,
		},
		{
			name:   "anonymous decision",
			cookie: "whatever",
			mockAuth: &mockAuthPort{
				authorizeFunc: func(ctx context.Context, token string) (*auth.AuthorizeResponse, error) {
					return &auth.AuthorizeResponse{Decision: auth.DecisionAnonymous}, nil
				},
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Unauthorized"`,
		},
		{
			name:   "auth module unavailable",
			cookie: "good-token",
			mockAuth: &mockAuthPort{
				authorizeFunc: func(ctx context.Context, token string) (*auth.AuthorizeResponse, error) {
					return nil, errors.New("no responders")
				},
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(RequireSession(tt.mockAuth))
			app.Get("/test", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"status": "authenticated"})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %v, want %v", resp.StatusCode, tt.expectedStatus)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("io.ReadAll() error = %v", err)
			}
			if !strings.Contains(string(body), tt.expectedBody) {
				t.Errorf("body = %s, want to contain %v", body, tt.expectedBody)
			}
		})
	}
}

func TestRequireSession_StoresClaims(t *testing.T) {
	app := fiber.New()
	app.Use(RequireSession(&mockAuthPort{authorizeFunc: allowToken("good-token")}))

	var captured *identity.Claims
	app.Get("/test", func(c *fiber.Ctx) error {
		claims, ok := c.Locals(ClaimsContextKey).(*identity.Claims)
		if !ok {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "no claims"})
		}
		captured = claims
		return c.JSON(fiber.Map{"status": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-token"})

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusOK)
	}
	if captured == nil || captured.UserID != "1" {
		t.Errorf("claims = %+v, want user 1", captured)
	}
}

func TestSessionToken_PrefersCookie(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/test", func(c *fiber.Ctx) error {
		got = SessionToken(c)
		return nil
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	if got != "from-cookie" {
		t.Errorf("SessionToken() = %q, want from-cookie", got)
	}
}

func TestSessionTokens(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   []string
	}{
		{name: "none", want: nil},
		{name: "cookie only", cookie: "c", want: []string{"c"}},
		{name: "bearer only", header: "Bearer b", want: []string{"b"}},
		{name: "both", cookie: "c", header: "Bearer b", want: []string{"c", "b"}},
		{name: "same token twice", cookie: "t", header: "Bearer t", want: []string{"t"}},
		{name: "non-bearer header", cookie: "c", header: "Basic xyz", want: []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got []string
			app.Get("/test", func(c *fiber.Ctx) error {
				got = SessionTokens(c)
				return nil
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			resp.Body.Close()

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SessionTokens() = %v, want %v", got, tt.want)
			}
		})
	}
}
