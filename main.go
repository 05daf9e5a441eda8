package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	apimod "github.com/example/nextshop-catalog/modules/api"
	authmod "github.com/example/nextshop-catalog/modules/auth"
	catalogmod "github.com/example/nextshop-catalog/modules/catalog"
	proxymod "github.com/example/nextshop-catalog/modules/proxy"
	sessionsmod "github.com/example/nextshop-catalog/modules/sessions"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	port := getEnvInt("PORT", 9876)
	environment := getEnv("APP_ENV", "development")
	dataPath := getEnv("CATALOG_DATA_PATH", "data/items.json")
	snapshots := getEnvBool("CATALOG_SNAPSHOTS", false)
	snapshotDir := getEnv("SNAPSHOT_DIR", "/tmp/nextshop-catalog")
	origins := getEnvList("CORS_ORIGINS", apimod.DefaultAllowedOrigins)
	redisAddr := getEnv("REDIS_ADDR", "")
	redisDB := getEnvInt("REDIS_DB", 0)
	proxyAddr := getEnv("PROXY_ADDR", "")
	backendURL := getEnv("BACKEND_URL", "http://localhost:9876")
	proxyTimeout := getEnvDuration("PROXY_TIMEOUT", proxymod.DefaultTimeout)
	authConfig := authmod.LoadConfig()

	log.Println("=== NextShop Catalog ===")
	log.Printf("Environment: %s", environment)
	log.Printf("HTTP Port: %d", port)
	log.Printf("Catalog document: %s", dataPath)
	log.Printf("Allowed origins: %s", strings.Join(origins, ", "))

	logLevel := mono.LogLevelInfo
	switch value := getEnv("LOG_LEVEL", "info"); strings.ToLower(value) {
	case "info":
	case "error":
		logLevel = mono.LogLevelError
	default:
		log.Printf("Warning: unsupported LOG_LEVEL %s, using info", value)
	}

	// Create mono application with embedded NATS JetStream
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithJetStreamStorageDir(snapshotDir),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Optional plugins are registered before the modules that use them
	if snapshots {
		snapshotPlugin, err := fsjetstream.New(fsjetstream.Config{
			Buckets: []fsjetstream.BucketConfig{
				{
					Name:        catalogmod.SnapshotBucket,
					Description: "Catalog document snapshots",
					MaxBytes:    64 * 1024 * 1024,
					Storage:     fsjetstream.FileStorage,
					Compression: true,
				},
			},
		})
		if err != nil {
			log.Fatalf("Failed to create snapshot plugin: %v", err)
		}
		if err := app.RegisterPlugin(snapshotPlugin, catalogmod.SnapshotPluginAlias); err != nil {
			log.Fatalf("Failed to register snapshot plugin: %v", err)
		}
		log.Printf("Catalog snapshots: %s", snapshotDir)
	}

	if redisAddr != "" {
		if err := app.RegisterPlugin(sessionsmod.NewPluginModule(redisAddr, redisDB), authmod.SessionsPluginAlias); err != nil {
			log.Fatalf("Failed to register sessions plugin: %v", err)
		}
		log.Printf("Session revocations: redis %s (db %d)", redisAddr, redisDB)
	}

	// Register modules
	if err := app.Register(catalogmod.NewModule(catalogmod.Config{DataPath: dataPath}, app.Logger())); err != nil {
		log.Fatalf("Failed to register catalog module: %v", err)
	}
	if err := app.Register(authmod.NewModule(authConfig)); err != nil {
		log.Fatalf("Failed to register auth module: %v", err)
	}
	if err := app.Register(apimod.NewModule(apimod.Config{
		Port:           port,
		Environment:    environment,
		AllowedOrigins: origins,
	})); err != nil {
		log.Fatalf("Failed to register api module: %v", err)
	}
	if proxyAddr != "" {
		if err := app.Register(proxymod.NewModule(proxymod.Config{
			Addr:       proxyAddr,
			BackendURL: backendURL,
			Timeout:    proxyTimeout,
		})); err != nil {
			log.Fatalf("Failed to register proxy module: %v", err)
		}
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	printStartupInfo(port, proxyAddr)

	// Setup graceful shutdown using gelmium/graceful-shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int, proxyAddr string) {
	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d", port)
	log.Println("Endpoints:")
	log.Println("  GET    /               - Service status")
	log.Println("  GET    /health         - Health check")
	log.Println("  GET    /api/items      - List items")
	log.Println("  GET    /api/items/:id  - Get item")
	log.Println("  POST   /api/items      - Create item (session required)")
	log.Println("  POST   /api/login      - Log in")
	log.Println("  POST   /api/logout     - Log out")
	if proxyAddr != "" {
		log.Printf("  POST   %s/api/proxy/items - Forward item creation", proxyAddr)
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable or default.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
