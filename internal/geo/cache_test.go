package geo

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestCache_GetSetRoundTrip(t *testing.T) {
	c := NewCache[string, int](clockwork.NewFakeClock())

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 42, time.Hour)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestCache_ExpiredReadIsMiss(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache[string, string](clock)

	c.Set("catalog", "snapshot", 24*time.Hour)

	clock.Advance(24*time.Hour - time.Second)
	_, ok := c.Get("catalog")
	assert.True(t, ok, "read just before expiry should hit")

	clock.Advance(time.Second)
	_, ok = c.Get("catalog")
	assert.False(t, ok, "read at expiry must be a miss, not a stale hit")
}

func TestCache_SetOverwrites(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache[string, int](clock)

	c.Set("k", 1, time.Minute)
	c.Set("k", 2, time.Hour)

	clock.Advance(30 * time.Minute)
	v, ok := c.Get("k")
	assert.True(t, ok, "second write's TTL governs")
	assert.Equal(t, 2, v)
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache[string, int](clockwork.NewFakeClock())

	c.Set("k", 1, time.Hour)
	c.Invalidate("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}
