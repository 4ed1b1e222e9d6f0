package service

import (
	"context"
	"time"
)

// Cache is an advisory key-value cache. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached bytes for key and whether they were present.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete drops one key.
	Delete(ctx context.Context, key string)

	// DeletePattern drops every key matching a glob pattern such as "shelter_search:*".
	DeletePattern(ctx context.Context, pattern string) int
}
