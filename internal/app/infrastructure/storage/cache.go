package storage

import (
	"encoding/json"
	"os"
	"time"

	"github.com/maypok86/otter/v2"
)

// Cache is a bounded in-memory cache with optional JSON persistence, used
// to keep fetched catalogs across restarts.
type Cache[T any] struct {
	inner *otter.Cache[string, T]

	filePath  string
	stopFlush chan struct{}
}

func NewCache[T any](capacity int, ttl time.Duration, filePath string, flushInterval time.Duration) *Cache[T] {
	c := &Cache[T]{
		filePath:  filePath,
		stopFlush: make(chan struct{}),
	}
	c.inner = otter.Must(&otter.Options[string, T]{
		InitialCapacity:  capacity,
		ExpiryCalculator: otter.ExpiryAccessing[string, T](ttl),
	})

	if filePath != "" {
		_ = c.loadFromDisk()
		if flushInterval > 0 {
			go c.periodicFlush(flushInterval)
		}
	}
	return c
}

func (c *Cache[T]) Set(key string, val T) {
	c.inner.Set(key, val)
}

func (c *Cache[T]) Get(key string) (T, bool) {
	return c.inner.GetIfPresent(key)
}

func (c *Cache[T]) Delete(key string) {
	c.inner.Invalidate(key)
}

// All returns a point-in-time copy of the cache contents.
func (c *Cache[T]) All() map[string]T {
	out := make(map[string]T)
	for k, v := range c.inner.All() {
		out[k] = v
	}
	return out
}

func (c *Cache[T]) FlushToDisk() {
	if c.filePath == "" {
		return
	}

	data, err := json.MarshalIndent(c.All(), "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(c.filePath, data, 0600)
}

func (c *Cache[T]) periodicFlush(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.FlushToDisk()
		case <-c.stopFlush:
			return
		}
	}
}

func (c *Cache[T]) loadFromDisk() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	var items map[string]T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for k, v := range items {
		c.inner.Set(k, v)
	}
	return nil
}

func (c *Cache[T]) Close() {
	close(c.stopFlush)
	c.FlushToDisk()
}
