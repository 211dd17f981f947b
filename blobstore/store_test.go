package blobstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/hupe1980/termvec/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("OpenMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Open(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		s := newStore(t)

		w, err := s.Create(ctx, "seg0.tvd")
		require.NoError(t, err)
		_, err = w.Write([]byte("hello "))
		require.NoError(t, err)
		_, err = w.Write([]byte("world"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		b, err := s.Open(ctx, "seg0.tvd")
		require.NoError(t, err)
		defer b.Close() //nolint:errcheck

		assert.Equal(t, int64(11), b.Size())

		p := make([]byte, 5)
		n, err := b.ReadAt(ctx, p, 6)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "world", string(p))

		// Read past the end.
		n, err = b.ReadAt(ctx, p, 9)
		assert.Equal(t, 2, n)
		assert.ErrorIs(t, err, io.EOF)

		rc, err := b.ReadRange(ctx, 0, 5)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "hello", string(data))
	})

	t.Run("DeleteAndList", func(t *testing.T) {
		s := newStore(t)

		for _, name := range []string{"seg0.tvd", "seg0.tvx", "seg1.tvd"} {
			w, err := s.Create(ctx, name)
			require.NoError(t, err)
			_, err = w.Write([]byte("x"))
			require.NoError(t, err)
			require.NoError(t, w.Close())
		}

		names, err := s.List(ctx, "seg0")
		require.NoError(t, err)
		assert.Equal(t, []string{"seg0.tvd", "seg0.tvx"}, names)

		require.NoError(t, s.Delete(ctx, "seg0.tvd"))
		require.NoError(t, s.Delete(ctx, "seg0.tvd")) // absent, not an error

		names, err = s.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"seg0.tvx", "seg1.tvd"}, names)
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestLocalStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		s, err := NewLocalStore(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestCachingStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		return NewCachingStore(NewMemoryStore(), cache.NewLRU(1<<20), 4)
	})
}

func TestCachingStoreHits(t *testing.T) {
	ctx := context.Background()
	lru := cache.NewLRU(1 << 20)
	s := NewCachingStore(NewMemoryStore(), lru, 4)

	w, err := s.Create(ctx, "blob")
	require.NoError(t, err)
	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b, err := s.Open(ctx, "blob")
	require.NoError(t, err)
	defer b.Close() //nolint:errcheck

	p := make([]byte, 10)
	_, err = b.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(p))

	// Same read again: every block must come from the cache.
	_, misses := lru.Stats()
	_, err = b.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	_, missesAfter := lru.Stats()
	assert.Equal(t, misses, missesAfter)

	hits, _ := lru.Stats()
	assert.Positive(t, hits)
}

func TestCachingStoreInvalidateOnDelete(t *testing.T) {
	ctx := context.Background()
	lru := cache.NewLRU(1 << 20)
	s := NewCachingStore(NewMemoryStore(), lru, 4)

	w, err := s.Create(ctx, "blob")
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b, err := s.Open(ctx, "blob")
	require.NoError(t, err)
	p := make([]byte, 4)
	_, err = b.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	require.NoError(t, s.Delete(ctx, "blob"))
	assert.Zero(t, lru.Size())

	_, err = s.Open(ctx, "blob")
	assert.True(t, errors.Is(err, ErrNotFound))
}
