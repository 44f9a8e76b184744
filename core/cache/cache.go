package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a thread-safe key-value store on sync.Map with optional TTL and tags.
type Cache struct {
	m sync.Map
	// tagIndex maps tag string to a set of keys (*sync.Map of key -> struct{})
	tagIndex sync.Map
}

var (
	once     sync.Once
	instance *Cache
)

// GetInstance returns the process-wide cache.
func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates a new Cache instance.
func NewCache() *Cache {
	return &Cache{}
}

// cacheItem holds a value and its expiration time.
type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // Unix nanoseconds; 0 means no expiration
}

func (i cacheItem) expired(now int64) bool {
	return i.ExpiresAt > 0 && now > i.ExpiresAt
}

// Set stores value under key. A zero ttl never expires. Tags allow later bulk deletion.
func (c *Cache) Set(key, value interface{}, ttl time.Duration, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	if len(tags) > 0 {
		c.TagKey(key, tags)
	}
}

// Get returns (value, true) if key is present and not expired.
func (c *Cache) Get(key interface{}) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item := v.(cacheItem)
	if item.expired(time.Now().UnixNano()) {
		c.m.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// GetOrDefault returns the cached value or def.
func (c *Cache) GetOrDefault(key, def interface{}) interface{} {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Remember returns the cached value for key, computing and storing it on a miss.
// Concurrent misses may compute twice; the first stored value wins and is
// returned to every caller, so readers never observe two different values.
// Errors are not cached.
func (c *Cache) Remember(key interface{}, ttl time.Duration, tags []string, compute func() (interface{}, error)) (interface{}, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	actual, loaded := c.m.LoadOrStore(key, cacheItem{Value: v, ExpiresAt: expiresAt})
	if loaded {
		item := actual.(cacheItem)
		if !item.expired(time.Now().UnixNano()) {
			return item.Value, nil
		}
		c.m.Store(key, cacheItem{Value: v, ExpiresAt: expiresAt})
	}
	if len(tags) > 0 {
		c.TagKey(key, tags)
	}
	return v, nil
}

// Delete removes a key from the cache.
func (c *Cache) Delete(key interface{}) {
	c.m.Delete(key)
}

// Key joins parts into a composite key: Key("attr", 12, 0) == "attr|12|0".
func Key(parts ...interface{}) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprintf("%v", p)
	}
	return strings.Join(s, "|")
}

// SetN stores a value under a composite key.
func (c *Cache) SetN(keys []interface{}, value interface{}, ttl time.Duration, tags []string) {
	c.Set(Key(keys...), value, ttl, tags)
}

// GetN retrieves a value by composite key.
func (c *Cache) GetN(keys ...interface{}) (interface{}, bool) {
	return c.Get(Key(keys...))
}

// TagKey assigns tags to key.
func (c *Cache) TagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		val, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		val.(*sync.Map).Store(key, struct{}{})
	}
}

// GetKeysByTag returns all keys assigned to tag.
func (c *Cache) GetKeysByTag(tag string) []interface{} {
	var keys []interface{}
	if val, ok := c.tagIndex.Load(tag); ok {
		val.(*sync.Map).Range(func(key, _ interface{}) bool {
			keys = append(keys, key)
			return true
		})
	}
	return keys
}

// DeleteByTag deletes all entries assigned to tag.
func (c *Cache) DeleteByTag(tag string) {
	if val, ok := c.tagIndex.LoadAndDelete(tag); ok {
		val.(*sync.Map).Range(func(key, _ interface{}) bool {
			c.m.Delete(key)
			return true
		})
	}
}
