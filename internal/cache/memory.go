package cache

import (
	"bytes"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanup is how often expired vectors are evicted from memory
const DefaultCleanup = 10 * time.Minute

// MemoryCache holds encoded embedding vectors for the life of the process.
// It sits in front of the disk layer so a run embeds each distinct promise
// or vote text at most once.
type MemoryCache struct {
	vectors *gocache.Cache
}

// NewMemoryCache keeps vectors for ttl; zero keeps them until Clear
func NewMemoryCache(ttl, cleanup time.Duration) *MemoryCache {
	if ttl == 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryCache{vectors: gocache.New(ttl, cleanup)}
}

// Get returns the encoded vector stored under key
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	v, found := c.vectors.Get(key)
	if !found {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set stores a private copy of value, so callers may reuse their buffer. A
// zero ttl uses the cache default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.vectors.Set(key, bytes.Clone(value), ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.vectors.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.vectors.Flush()
	return nil
}

// Len counts stored vectors, including expired ones not yet evicted
func (c *MemoryCache) Len() int {
	return c.vectors.ItemCount()
}
