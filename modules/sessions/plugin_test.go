package sessions

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestParseRedisAddr(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
	}{
		{addr: "localhost:6379", wantHost: "localhost", wantPort: 6379},
		{addr: "redis.internal:6380", wantHost: "redis.internal", wantPort: 6380},
		{addr: ":6381", wantHost: "127.0.0.1", wantPort: 6381},
		{addr: "localhost:abc", wantHost: "localhost", wantPort: 6379},
		{addr: "no-port", wantHost: "127.0.0.1", wantPort: 6379},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			host, port := parseRedisAddr(tt.addr)
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("parseRedisAddr(%q) = %s, %d, want %s, %d", tt.addr, host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestPluginModule_BeforeStart(t *testing.T) {
	m := NewPluginModule("localhost:6379", 0)

	if m.Name() != "sessions" {
		t.Errorf("Name() = %v, want sessions", m.Name())
	}
	if m.Storage() != nil {
		t.Error("Storage() should be nil before Start")
	}
	if m.Health(context.Background()).Healthy {
		t.Error("Health() should be unhealthy before Start")
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Errorf("Stop() before Start error = %v", err)
	}
}

func TestPluginModule_Redis(t *testing.T) {
	const addr = "localhost:6379"
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		t.Skip("Redis not available, skipping test")
	}
	conn.Close()

	m := NewPluginModule(addr, 15)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.Stop(context.Background())

	ctx := context.Background()
	if err := m.Storage().SetWithContext(ctx, "sessions-test", []byte("1"), time.Minute); err != nil {
		t.Fatalf("SetWithContext() error = %v", err)
	}
	got, err := m.Storage().GetWithContext(ctx, "sessions-test")
	if err != nil || string(got) != "1" {
		t.Errorf("GetWithContext() = %q, %v", got, err)
	}
	_ = m.Storage().DeleteWithContext(ctx, "sessions-test")

	if status := m.Health(ctx); !status.Healthy {
		t.Errorf("Health() = %+v, want healthy", status)
	}
}
