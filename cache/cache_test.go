package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPut(t *testing.T) {
	c := New[string](time.Minute, 10)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestTTLExpiry(t *testing.T) {
	c := New[string](time.Minute, 10)

	t0 := time.Now()
	c.now = func() time.Time { return t0 }
	c.Put("k", "v")

	// Just inside the TTL.
	c.now = func() time.Time { return t0.Add(time.Minute - time.Millisecond) }
	_, ok := c.Get("k")
	assert.True(t, ok)

	// Just past the TTL: miss, and the stale entry is removed.
	c.now = func() time.Time { return t0.Add(time.Minute + time.Millisecond) }
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestOverflowClearsEverything(t *testing.T) {
	const max = 5
	c := New[int](time.Minute, max)

	for i := 0; i < max; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}
	assert.Equal(t, max, c.Len())

	// The insert that would exceed the cap resets the whole cache first.
	c.Put("overflow", 99)
	assert.Equal(t, 1, c.Len())

	for i := 0; i < max; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.False(t, ok, "key k%d should have been evicted", i)
	}
	v, ok := c.Get("overflow")
	require.True(t, ok)
	assert.Equal(t, 99, v)
}

func TestOverwriteDoesNotClear(t *testing.T) {
	const max = 3
	c := New[int](time.Minute, max)

	for i := 0; i < max; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}
	// Rewriting an existing key is not an overflow.
	c.Put("k0", 100)
	assert.Equal(t, max, c.Len())

	v, ok := c.Get("k0")
	require.True(t, ok)
	assert.Equal(t, 100, v)
}

func TestClear(t *testing.T) {
	c := New[string](time.Minute, 10)
	c.Put("a", "1")
	c.Put("b", "2")
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute, 64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%16)
				c.Put(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
}
