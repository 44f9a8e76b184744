package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"gallery.GO/core/cache"
)

// RedisClient is a global Redis client instance
var RedisClient *redis.Client

//Accessed as config.RedisClient in other files

func InitRedis() {
	cfg := LoadAppConfig()
	if cfg.RedisAddr == "" {
		RedisClient = nil
		return
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
}

func RedisCtx() context.Context {
	return context.Background()
}

// DocumentCache returns the Redis document cache when Redis is reachable and
// an in-process cache otherwise.
func DocumentCache(ttl time.Duration) cache.DocumentCache {
	if RedisClient == nil {
		return cache.NewMemoryDocumentCache(cache.GetInstance(), ttl)
	}
	return cache.NewRedisDocumentCache(RedisClient, "colorgallery", ttl)
}
