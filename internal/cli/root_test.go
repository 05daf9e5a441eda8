package cli

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/example/nextshop-catalog/domain/item"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves a minimal catalog API on a loopback port.
func fakeBackend(t *testing.T) string {
	t.Helper()

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lamp := item.Item{ID: "lamp-1", Name: "Lamp", Description: "Desk lamp", Price: 19.99, Image: item.PlaceholderImage, CreatedAt: created}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/api/items", func(c *fiber.Ctx) error {
		return c.JSON([]item.Item{lamp})
	})
	app.Get("/api/items/:id", func(c *fiber.Ctx) error {
		if c.Params("id") != lamp.ID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
		}
		return c.JSON(lamp)
	})
	app.Post("/api/items", func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "Bearer tok" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Status(fiber.StatusCreated).JSON(item.Item{ID: "new-1", Name: "Mug", Price: 4.5, CreatedAt: created})
	})
	app.Post("/api/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"ok": true, "message": "Login successful", "token": "tok", "expiresIn": 86400,
			"user": fiber.Map{"id": "1", "name": "Admin User", "email": "admin@gmail.com"},
		})
	})
	app.Post("/api/logout", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "message": "Logout successful"})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NEXTSHOP_TOKEN", "")
	t.Setenv("NEXTSHOP_SERVER", "")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "nextshopctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	paths := [][]string{
		{"items"},
		{"items", "list"},
		{"items", "get"},
		{"items", "add"},
		{"login"},
		{"logout"},
	}

	for _, path := range paths {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Setenv("NEXTSHOP_TOKEN", "from-env")
	t.Setenv("NEXTSHOP_SERVER", "")
	cmd := NewRootCommand()

	serverFlag := cmd.PersistentFlags().Lookup("server")
	require.NotNil(t, serverFlag)
	assert.Equal(t, "http://localhost:9876", serverFlag.DefValue)

	tokenFlag := cmd.PersistentFlags().Lookup("token")
	require.NotNil(t, tokenFlag)
	assert.Equal(t, "from-env", tokenFlag.DefValue)

	timeoutFlag := cmd.PersistentFlags().Lookup("timeout")
	require.NotNil(t, timeoutFlag)
	assert.Equal(t, "10s", timeoutFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "items", "list", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestItemsList(t *testing.T) {
	server := fakeBackend(t)

	out, err := execute(t, "items", "list", "--server", server)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "lamp-1")
	assert.Contains(t, out, "19.99")

	out, err = execute(t, "items", "list", "--server", server, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []item.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Lamp", resp.Data[0].Name)
}

func TestItemsGet(t *testing.T) {
	server := fakeBackend(t)

	out, err := execute(t, "items", "get", "lamp-1", "--server", server)
	require.NoError(t, err)
	assert.Contains(t, out, "Desk lamp")

	out, err = execute(t, "items", "get", "nope", "--server", server, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestItemsAdd(t *testing.T) {
	server := fakeBackend(t)
	args := []string{"items", "add", "--server", server, "--name", "Mug", "--description", "Tea mug", "--price", "4.5"}

	out, err := execute(t, args...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Unauthorized")

	out, err = execute(t, append(args, "--token", "tok")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Created item new-1")
}

func TestItemsAddRequiresFlags(t *testing.T) {
	_, err := execute(t, "items", "add", "--name", "Mug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestLoginLogout(t *testing.T) {
	server := fakeBackend(t)

	out, err := execute(t, "login", "--server", server, "--email", "admin@gmail.com", "--password", "123456")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Admin User <admin@gmail.com>")
	assert.Contains(t, out, "export NEXTSHOP_TOKEN=tok")

	out, err = execute(t, "logout", "--server", server, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
}

func TestUnreachableServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	out, err := execute(t, "items", "list", "--server", "http://"+addr)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNetwork)
}
