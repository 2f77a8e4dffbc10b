package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTestRedisAddr is used when STRATASHOP_TEST_REDIS_ADDR is unset.
const DefaultTestRedisAddr = "localhost:6379"

// TestRedisAddr returns the Redis server used by tests that need one.
func TestRedisAddr() string {
	if addr := os.Getenv("STRATASHOP_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return DefaultTestRedisAddr
}

var (
	redisOnce sync.Once
	redisErr  error
)

// SetupTestRedis returns a client for TestRedisAddr(), or skips the test when
// no Redis server is reachable. Keys the test writes are its own to clean up;
// use t.Name() in them to stay clear of other tests.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr:        TestRedisAddr(),
		DialTimeout: 2 * time.Second,
	})

	redisOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		redisErr = rdb.Ping(ctx).Err()
	})
	if redisErr != nil {
		_ = rdb.Close()
		t.Skipf("redis not available at %s: %v", TestRedisAddr(), redisErr)
	}

	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}
