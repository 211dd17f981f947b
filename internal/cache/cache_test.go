package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU(1024)

	_, ok := c.Get(Key{Name: "a", Block: 0})
	assert.False(t, ok)

	c.Set(Key{Name: "a", Block: 0}, []byte("hello"))
	b, ok := c.Get(Key{Name: "a", Block: 0})
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), b)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU(10)

	c.Set(Key{Name: "a", Block: 0}, []byte("12345"))
	c.Set(Key{Name: "b", Block: 0}, []byte("12345"))
	// Touch "a" so "b" is the eviction candidate.
	_, ok := c.Get(Key{Name: "a", Block: 0})
	require.True(t, ok)

	c.Set(Key{Name: "c", Block: 0}, []byte("12345"))

	_, ok = c.Get(Key{Name: "a", Block: 0})
	assert.True(t, ok)
	_, ok = c.Get(Key{Name: "b", Block: 0})
	assert.False(t, ok)
	_, ok = c.Get(Key{Name: "c", Block: 0})
	assert.True(t, ok)

	assert.LessOrEqual(t, c.Size(), int64(10))
}

func TestLRUOversizedBlock(t *testing.T) {
	c := NewLRU(4)
	c.Set(Key{Name: "a", Block: 0}, []byte("too large"))
	_, ok := c.Get(Key{Name: "a", Block: 0})
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestLRUUpdateExisting(t *testing.T) {
	c := NewLRU(1024)
	key := Key{Name: "a", Block: 3}

	c.Set(key, []byte("one"))
	c.Set(key, []byte("longer value"))

	b, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("longer value"), b)
	assert.Equal(t, int64(len("longer value")), c.Size())
}

func TestLRUInvalidateBlob(t *testing.T) {
	c := NewLRU(1024)
	for i := uint64(0); i < 4; i++ {
		c.Set(Key{Name: "seg0.tvd", Block: i}, []byte{byte(i)})
		c.Set(Key{Name: "seg1.tvd", Block: i}, []byte{byte(i)})
	}

	c.InvalidateBlob("seg0.tvd")

	for i := uint64(0); i < 4; i++ {
		_, ok := c.Get(Key{Name: "seg0.tvd", Block: i})
		assert.False(t, ok)
		_, ok = c.Get(Key{Name: "seg1.tvd", Block: i})
		assert.True(t, ok)
	}
}

func TestShardedLRUConcurrent(t *testing.T) {
	c := NewShardedLRU(1 << 20)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			name := fmt.Sprintf("blob%d", g%2)
			for i := 0; i < 200; i++ {
				key := Key{Name: name, Block: uint64(i)}
				c.Set(key, []byte{byte(i)})
				if b, ok := c.Get(key); ok {
					assert.Equal(t, []byte{byte(i)}, b)
				}
			}
		}(g)
	}
	wg.Wait()

	hits, misses := c.Stats()
	assert.Positive(t, hits+misses)
}
