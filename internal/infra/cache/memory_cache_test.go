package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx/fxtest"
)

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(nil)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "proposal_detail:1", []byte("v"), time.Minute)

	got, ok := c.Get(ctx, "proposal_detail:1")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, ok = c.Get(ctx, "proposal_detail:1")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(nil)

	c.Set(ctx, "shelter_search:a", []byte("1"), 0)
	c.Set(ctx, "shelter_search:b", []byte("2"), 0)
	c.Set(ctx, "shelter_detail:a", []byte("3"), 0)

	assert.Equal(t, 2, c.DeletePattern(ctx, "shelter_search:*"))
	assert.Equal(t, 0, c.DeletePattern(ctx, "shelter_search:*"))

	_, ok := c.Get(ctx, "shelter_detail:a")
	assert.True(t, ok)
}

func TestMemoryCache_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(nil)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "short", []byte("x"), time.Second)
	c.Set(ctx, "forever", []byte("y"), 0)

	now = now.Add(time.Hour)
	c.purgeExpired()

	assert.Equal(t, 1, c.Len())
}

func TestNewCache_JanitorLifecycle(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	c := NewCache(lc, nil)
	lc.RequireStart()

	c.Set(context.Background(), "k", []byte("v"), 0)
	_, ok := c.Get(context.Background(), "k")
	assert.True(t, ok)

	lc.RequireStop()
}
