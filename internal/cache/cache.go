// Package cache provides a size-bounded block cache used by the
// caching blob store. Entries are immutable byte blocks keyed by blob
// name and block index.
package cache

import (
	"container/list"
	"hash/maphash"
	"sync"
	"sync/atomic"
)

// Key identifies one cached block of one blob.
type Key struct {
	Name  string
	Block uint64
}

// BlockCache is a byte-oriented cache for immutable blocks. Returned
// slices must be treated as read-only.
type BlockCache interface {
	Get(key Key) ([]byte, bool)
	Set(key Key, b []byte)
	// InvalidateBlob removes every block of the named blob.
	InvalidateBlob(name string)
	Stats() (hits, misses int64)
}

// LRU is a mutex-guarded LRU BlockCache with a byte capacity.
type LRU struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[Key]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   Key
	value []byte
}

// NewLRU creates an LRU cache holding at most capacity bytes.
func NewLRU(capacity int64) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
	}
}

// Get returns a cached block.
func (c *LRU) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a block. Blocks larger than the capacity are not cached.
func (c *LRU) Set(key Key, b []byte) {
	itemSize := int64(len(b))
	if itemSize > c.capacity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		c.size += itemSize - int64(len(ent.Value.(*entry).value))
		ent.Value.(*entry).value = b
	} else {
		c.items[key] = c.evictList.PushFront(&entry{key, b})
		c.size += itemSize
	}

	for c.size > c.capacity {
		tail := c.evictList.Back()
		if tail == nil {
			break
		}
		c.removeElement(tail)
	}
}

// InvalidateBlob removes every block of the named blob.
func (c *LRU) InvalidateBlob(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, element := range c.items {
		if key.Name == name {
			toRemove = append(toRemove, element)
		}
	}
	for _, e := range toRemove {
		c.removeElement(e)
	}
}

// Stats returns hit/miss counters.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the current size of the cache in bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *LRU) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.key)
	c.size -= int64(len(kv.value))
}

const numShards = 16

// ShardedLRU distributes entries across shards to reduce lock
// contention under concurrent readers.
type ShardedLRU struct {
	shards [numShards]*LRU
	seed   maphash.Seed
}

// NewShardedLRU creates a sharded cache; the capacity is divided
// evenly across shards.
func NewShardedLRU(capacity int64) *ShardedLRU {
	shardCapacity := capacity / numShards
	if shardCapacity < 1 {
		shardCapacity = 1
	}
	s := &ShardedLRU{seed: maphash.MakeSeed()}
	for i := range s.shards {
		s.shards[i] = NewLRU(shardCapacity)
	}
	return s
}

func (s *ShardedLRU) shard(key Key) *LRU {
	var h maphash.Hash
	h.SetSeed(s.seed)
	_, _ = h.WriteString(key.Name)
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(key.Block >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return s.shards[h.Sum64()%numShards]
}

// Get returns a cached block.
func (s *ShardedLRU) Get(key Key) ([]byte, bool) {
	return s.shard(key).Get(key)
}

// Set caches a block.
func (s *ShardedLRU) Set(key Key, b []byte) {
	s.shard(key).Set(key, b)
}

// InvalidateBlob removes every block of the named blob, across all
// shards.
func (s *ShardedLRU) InvalidateBlob(name string) {
	var wg sync.WaitGroup
	wg.Add(numShards)
	for i := range s.shards {
		go func(shard *LRU) {
			defer wg.Done()
			shard.InvalidateBlob(name)
		}(s.shards[i])
	}
	wg.Wait()
}

// Stats returns aggregated hit/miss counters.
func (s *ShardedLRU) Stats() (hits, misses int64) {
	for i := range s.shards {
		h, m := s.shards[i].Stats()
		hits += h
		misses += m
	}
	return hits, misses
}
