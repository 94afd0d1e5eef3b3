package environment

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache[int](time.Minute, 10, clock)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache[string](10*time.Minute, 10, clock)

	c.Set("k", "v")
	clock.Advance(9 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry must live for the whole ttl window")

	clock.Advance(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry must expire at ttl")
	assert.Equal(t, 0, c.Len())
}

func TestCache_EvictsSoonestExpiring(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache[int](time.Minute, 2, clock)

	c.Set("first", 1)
	clock.Advance(time.Second)
	c.Set("second", 2)
	clock.Advance(time.Second)
	c.Set("third", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("first")
	assert.False(t, ok)
	_, ok = c.Get("second")
	assert.True(t, ok)
	_, ok = c.Get("third")
	assert.True(t, ok)
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := NewCache[int](time.Minute, 2, clockwork.NewFakeClock())

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)

	assert.Equal(t, 2, c.Len())
	v, _ := c.Get("a")
	assert.Equal(t, 10, v)
}

func TestCoordKey(t *testing.T) {
	assert.Equal(t, "55.75,37.62", CoordKey(55.7512, 37.6184))
	assert.Equal(t, CoordKey(55.7512, 37.6184), CoordKey(55.7499, 37.6249))
	assert.Equal(t, "0.00,0.00", CoordKey(-0.001, 0.002))
}
