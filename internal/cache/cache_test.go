package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGetExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[string](time.Minute)
	defer c.Close()
	c.now = func() time.Time { return now }

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "alpha", got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size(), "expired entries are dropped on read")

	stats := c.Stats()
	assert.EqualValues(t, 1, stats["hits"])
	assert.EqualValues(t, 1, stats["misses"])
}

func TestCache_EvictExpired(t *testing.T) {
	now := time.Now()
	c := New[int](time.Second)
	defer c.Close()
	c.now = func() time.Time { return now }

	c.Set("old", 1)
	now = now.Add(2 * time.Second)
	c.Set("new", 2)

	assert.Equal(t, 1, c.Stats()["expired_items"])
	assert.Equal(t, 1, c.evictExpired())
	assert.Equal(t, 1, c.Size())
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New[[]int](time.Minute)
	defer c.Close()

	c.Set("x", []int{1})
	c.Set("y", []int{2})
	c.Delete("x")
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("ingest", "gpt2"), Key("ingest", "gpt2"))
	assert.NotEqual(t, Key("ingest", "gpt2"), Key("ingestgpt2"))
	assert.Len(t, Key("anything"), 32)
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New[string](time.Minute)
	c.Close()
	assert.NotPanics(t, c.Close)
}
