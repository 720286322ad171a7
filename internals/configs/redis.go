package configs

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when addr is empty or the server does not answer;
// callers then run without a cache.
func ConnectRedis(addr string) *redis.Client {
	if addr == "" {
		log.Println("⚠️ REDIS_ADDR tidak diset, cache kalender dimatikan")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: GetEnv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Gagal konek Redis (%s): %v", addr, err)
		_ = rdb.Close()
		return nil
	}

	log.Println("✅ Redis connected.")
	return rdb
}
