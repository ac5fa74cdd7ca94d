package imageio

import (
	"sync"

	"shadow-studio/internal/raster"
)

// Cache is a concurrency-safe cache of decoded images keyed by path.
// Entries are shared between callers and must be treated as read-only.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*raster.Image
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]*raster.Image)}
}

// Load returns the cached image for path, decoding it on first use.
// Failed loads are not cached.
func (c *Cache) Load(path string) (*raster.Image, error) {
	// Fast path: read lock
	c.mu.RLock()
	if img, ok := c.items[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.items[path]; ok {
		return cached, nil
	}
	c.items[path] = img
	return img, nil
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
