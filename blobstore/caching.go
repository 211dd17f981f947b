package blobstore

import (
	"context"
	"io"

	"github.com/hupe1980/termvec/internal/cache"
)

// CachingStore wraps a Store and adds block-level read caching. It is
// meant for object-store backends where every ReadAt is a network
// round trip; segment files are immutable, so cached blocks never go
// stale while a blob exists.
type CachingStore struct {
	inner     Store
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a CachingStore. blockSize defaults to 64KB
// if <= 0.
func NewCachingStore(inner Store, blockCache cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = 64 << 10
	}
	return &CachingStore{inner: inner, cache: blockCache, blockSize: blockSize}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{inner: b, cache: s.cache, name: name, blockSize: s.blockSize}, nil
}

// Create passes through; writes are not cached.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.cache.InvalidateBlob(name)
	return s.inner.Create(ctx, name)
}

// Delete removes a blob and drops its cached blocks.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.InvalidateBlob(name)
	return s.inner.Delete(ctx, name)
}

// List passes through to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

type cachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *cachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *cachingBlob) Close() error {
	return b.inner.Close()
}

// ReadAt serves reads block by block, filling the cache on misses.
func (b *cachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	size := b.inner.Size()
	if off >= size {
		return 0, io.EOF
	}

	total := 0
	for total < len(p) && off < size {
		block, err := b.block(ctx, off/b.blockSize)
		if err != nil {
			return total, err
		}
		n := copy(p[total:], block[off%b.blockSize:])
		total += n
		off += int64(n)
	}
	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// ReadRange bypasses the cache: range reads are sequential scans that
// would churn the block cache for no benefit.
func (b *cachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return b.inner.ReadRange(ctx, off, length)
}

func (b *cachingBlob) block(ctx context.Context, idx int64) ([]byte, error) {
	key := cache.Key{Name: b.name, Block: uint64(idx)}
	if block, ok := b.cache.Get(key); ok {
		return block, nil
	}

	start := idx * b.blockSize
	length := b.blockSize
	if start+length > b.inner.Size() {
		length = b.inner.Size() - start
	}
	block := make([]byte, length)
	n, err := b.inner.ReadAt(ctx, block, start)
	if err != nil && (err != io.EOF || int64(n) != length) {
		return nil, err
	}
	b.cache.Set(key, block)
	return block, nil
}
