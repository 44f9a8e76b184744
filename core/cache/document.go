package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DocumentCache stores serialized documents (gallery config JSON) by key.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, doc []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// redisCmdable is the slice of the go-redis client the document cache needs.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDocumentCache keeps documents in Redis under a namespace prefix.
type RedisDocumentCache struct {
	client redisCmdable
	prefix string
	ttl    time.Duration
}

func NewRedisDocumentCache(client redisCmdable, prefix string, ttl time.Duration) *RedisDocumentCache {
	return &RedisDocumentCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisDocumentCache) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Get treats any Redis failure as a miss.
func (r *RedisDocumentCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *RedisDocumentCache) Set(ctx context.Context, key string, doc []byte) error {
	return r.client.Set(ctx, r.key(key), doc, r.ttl).Err()
}

func (r *RedisDocumentCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

// MemoryDocumentCache is the in-process DocumentCache used when Redis is absent.
type MemoryDocumentCache struct {
	c   *Cache
	ttl time.Duration
}

func NewMemoryDocumentCache(c *Cache, ttl time.Duration) *MemoryDocumentCache {
	if c == nil {
		c = NewCache()
	}
	return &MemoryDocumentCache{c: c, ttl: ttl}
}

func (m *MemoryDocumentCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.c.Get(Key("doc", key))
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *MemoryDocumentCache) Set(_ context.Context, key string, doc []byte) error {
	m.c.Set(Key("doc", key), doc, m.ttl, nil)
	return nil
}

func (m *MemoryDocumentCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(Key("doc", k))
	}
	return nil
}

// NopDocumentCache never stores anything.
type NopDocumentCache struct{}

func (NopDocumentCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NopDocumentCache) Set(context.Context, string, []byte) error  { return nil }
func (NopDocumentCache) Delete(context.Context, ...string) error    { return nil }
