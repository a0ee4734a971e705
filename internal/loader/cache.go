package loader

import "sync"

// Cache maps file paths to loaded content. It is filled once per viewer
// mount and overwritten wholesale when the file list changes.
type Cache struct {
	contents map[string]string
	mutex    sync.RWMutex
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{contents: make(map[string]string)}
}

// Apply stores every result, overwriting existing entries.
func (c *Cache) Apply(results map[string]string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for path, content := range results {
		c.contents[path] = content
	}
}

// Get returns the content for path, or LoadingPlaceholder when absent.
func (c *Cache) Get(path string) string {
	if content, ok := c.Lookup(path); ok {
		return content
	}
	return LoadingPlaceholder
}

// Lookup returns the content for path and whether it has loaded.
func (c *Cache) Lookup(path string) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	content, ok := c.contents[path]
	return content, ok
}

// Ready reports whether every file has content (or a failure placeholder).
func (c *Cache) Ready(files []FileDescriptor) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, file := range files {
		if _, ok := c.contents[file.Path]; !ok {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of the cached contents.
func (c *Cache) Snapshot() map[string]string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make(map[string]string, len(c.contents))
	for path, content := range c.contents {
		out[path] = content
	}
	return out
}
