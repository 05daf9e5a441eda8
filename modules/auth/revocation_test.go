package auth

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/storage/redis/v3"
)

const testRedisAddr = "localhost:6379"

func TestMemoryRevocationList(t *testing.T) {
	list := NewMemoryRevocationList()
	ctx := context.Background()

	revoked, err := list.IsRevoked(ctx, "token-1")
	if err != nil || revoked {
		t.Fatalf("IsRevoked() = %v, %v, want false, nil", revoked, err)
	}

	if err := list.Revoke(ctx, "token-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	revoked, err = list.IsRevoked(ctx, "token-1")
	if err != nil || !revoked {
		t.Errorf("IsRevoked() = %v, %v, want true, nil", revoked, err)
	}

	revoked, _ = list.IsRevoked(ctx, "token-2")
	if revoked {
		t.Error("IsRevoked() reported an unrelated token")
	}
}

func TestMemoryRevocationList_Expiry(t *testing.T) {
	list := NewMemoryRevocationList()
	ctx := context.Background()
	now := time.Now()
	list.now = func() time.Time { return now }

	if err := list.Revoke(ctx, "short", now.Add(time.Minute)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if err := list.Revoke(ctx, "long", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	// Already expired tokens are not stored.
	if err := list.Revoke(ctx, "stale", now.Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if got := list.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	now = now.Add(2 * time.Minute)

	if revoked, _ := list.IsRevoked(ctx, "short"); revoked {
		t.Error("IsRevoked() should forget expired entries")
	}
	if revoked, _ := list.IsRevoked(ctx, "long"); !revoked {
		t.Error("IsRevoked() lost a live entry")
	}
	if got := list.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

// checkRedisAvailable skips the test when no Redis server is reachable.
// gofiber/storage/redis panics on connection failure, so we check first.
func checkRedisAvailable(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", testRedisAddr, 2*time.Second)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	conn.Close()
}

func TestStorageRevocationList(t *testing.T) {
	checkRedisAvailable(t)

	store := redis.New(redis.Config{
		Host: "localhost",
		Port: 6379,
	})
	defer store.Close()

	prefix := "test-revoked:" + time.Now().Format("150405.000000") + ":"
	list := NewStorageRevocationList(store, prefix)
	ctx := context.Background()

	revoked, err := list.IsRevoked(ctx, "token-1")
	if err != nil || revoked {
		t.Fatalf("IsRevoked() = %v, %v, want false, nil", revoked, err)
	}

	if err := list.Revoke(ctx, "token-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	defer store.Delete(prefix + "token-1")

	revoked, err = list.IsRevoked(ctx, "token-1")
	if err != nil || !revoked {
		t.Errorf("IsRevoked() = %v, %v, want true, nil", revoked, err)
	}

	// Expired tokens are ignored.
	if err := list.Revoke(ctx, "token-2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, _ := list.IsRevoked(ctx, "token-2"); revoked {
		t.Error("IsRevoked() reported a token revoked with a past expiry")
	}
}
