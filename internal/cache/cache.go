// Package cache keeps rendered responses keyed by request path and
// invalidates them by path prefix after writes.
package cache

import (
	"strings"
	"sync"
)

// Cache is a path-keyed response cache. Revalidate drops every entry
// under a path prefix so the next read repopulates it.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func New() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Get returns the cached bytes for path, if any.
func (c *Cache) Get(path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[path]
	return data, ok
}

// Set stores bytes under path, replacing any prior entry.
func (c *Cache) Set(path string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = data
}

// Revalidate drops the entry at path and every entry nested under it.
func (c *Cache) Revalidate(path string) {
	prefix := strings.TrimSuffix(path, "/")
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key == prefix || strings.HasPrefix(key, prefix+"/") {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
