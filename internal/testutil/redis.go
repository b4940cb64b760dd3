//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
)

// RedisAddr returns the address of the test Redis instance, or skips
// the test when BGPLAB_TEST_REDIS_ADDR is not set.
func RedisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("BGPLAB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BGPLAB_TEST_REDIS_ADDR not set; skipping redis integration test")
	}
	return addr
}

// FlushLab removes every key belonging to a lab from the test Redis.
// Registered as test cleanup so each test starts from a clean slate.
func FlushLab(t *testing.T, addr string, db int, lab string) {
	t.Helper()

	clean := func() {
		client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
		defer client.Close()

		ctx := context.Background()
		var cursor uint64
		for {
			keys, next, err := client.Scan(ctx, cursor, "bgplab:"+lab+":*", 100).Result()
			if err != nil {
				t.Fatalf("scanning test redis: %v", err)
			}
			if len(keys) > 0 {
				if err := client.Del(ctx, keys...).Err(); err != nil {
					t.Fatalf("flushing test redis: %v", err)
				}
			}
			cursor = next
			if cursor == 0 {
				return
			}
		}
	}
	clean()
	t.Cleanup(clean)
}
