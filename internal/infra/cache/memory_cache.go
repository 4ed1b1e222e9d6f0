// Package cache provides the advisory in-process cache used for read-through lookups.
package cache

import (
	"context"
	"log/slog"
	"path"
	"sync"
	"time"

	"refugis/internal/domain/service"

	"go.uber.org/fx"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a TTL cache guarded by a RWMutex. Expired entries are dropped lazily on read
// and eagerly by the janitor goroutine when one is running.
type MemoryCache struct {
	mu     sync.RWMutex
	items  map[string]item
	now    func() time.Time
	logger *slog.Logger
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache(logger *slog.Logger) *MemoryCache {
	return &MemoryCache{
		items:  make(map[string]item),
		now:    time.Now,
		logger: logger,
	}
}

const janitorInterval = time.Minute

// NewCache provides the cache as the domain interface and runs its janitor for the app lifetime.
func NewCache(lc fx.Lifecycle, logger *slog.Logger) service.Cache {
	c := NewMemoryCache(logger)

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go c.RunJanitor(ctx, janitorInterval)

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			return nil
		},
	})

	return c
}

// Get returns the value for key unless it expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()

		return nil, false
	}

	return entry.value, true
}

// Set stores value for ttl. A non-positive ttl keeps the entry until deleted.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	entry := item{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = entry
	c.mu.Unlock()
}

// Delete drops key.
func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeletePattern drops every key matching a glob pattern and returns how many were removed.
func (c *MemoryCache) DeletePattern(_ context.Context, pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.items {
		matched, err := path.Match(pattern, key)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("Invalid cache pattern", slog.String("pattern", pattern), slog.Any("error", err))
			}

			return removed
		}
		if matched {
			delete(c.items, key)
			removed++
		}
	}

	return removed
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// RunJanitor purges expired entries every interval until ctx is done.
func (c *MemoryCache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

func (c *MemoryCache) purgeExpired() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.items {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(c.items, key)
		}
	}
}
