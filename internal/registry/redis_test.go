package registry

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Requires a reachable server; set REDIS_ADDR to run.
func TestRedisContract(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	runContract(t, func(t *testing.T) Registry {
		rdb := goredis.NewClient(&goredis.Options{Addr: addr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			t.Fatalf("ping redis: %v", err)
		}
		key := "test:active_games:" + uuid.NewString()
		t.Cleanup(func() {
			rdb.Del(context.Background(), key)
			rdb.Close()
		})
		return NewRedis(rdb, key, nil)
	})
}

func TestOpenRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := OpenRedis(ctx, RedisOptions{Addr: "127.0.0.1:1", Key: "k"}, nil); err == nil {
		t.Fatalf("expected ping failure")
	}
}
