package cache

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const (
	// ShardCount is the number of shards. Must be a power of 2.
	ShardCount = 16

	shardMask = ShardCount - 1
)

// Hasher computes the shard hash of a key.
type Hasher[K any] func(K) uint64

// StringHasher hashes a string key with xxhash.
func StringHasher(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Uint64Hasher hashes a uint64 key with xxhash.
func Uint64Hasher(u uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return xxhash.Sum64(b[:])
}

// Sharded is a thread-safe map split across ShardCount shards.
//
// With a positive per-shard capacity the cache evicts least recently used
// entries. With capacity <= 0 it is unbounded: entries stay until Delete or
// Clear, and a hit takes only a shard read lock.
type Sharded[K comparable, V any] struct {
	shards   [ShardCount]*shard[K, V]
	hasher   Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[K, V]
	lru     *lruList[K]
}

type entry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// NewSharded creates a cache holding up to capacity entries per shard, or
// an unbounded cache when capacity <= 0.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	c := &Sharded[K, V]{hasher: hasher, capacity: max(capacity, 0)}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{
			entries: make(map[K]*entry[K, V]),
			lru:     newLRUList[K](),
		}
	}
	return c
}

func (c *Sharded[K, V]) bounded() bool { return c.capacity > 0 }

func (c *Sharded[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get returns the value cached under key.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	if !c.bounded() {
		s.mu.RLock()
		e, ok := s.entries[key]
		s.mu.RUnlock()
		return c.result(e, ok)
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		s.lru.MoveToFront(e.node)
	}
	s.mu.Unlock()
	return c.result(e, ok)
}

func (c *Sharded[K, V]) result(e *entry[K, V], ok bool) (V, bool) {
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set stores value under key, replacing any previous value.
func (c *Sharded[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.store(s, key, value)
}

// GetOrCreate returns the cached value for key, calling create under the
// shard lock on a miss. create must be fast and must not touch the cache.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}

	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		if c.bounded() {
			s.lru.MoveToFront(e.node)
		}
		return e.value
	}
	v := create()
	c.store(s, key, v)
	return v
}

// store inserts or replaces an entry. Caller holds s.mu.
func (c *Sharded[K, V]) store(s *shard[K, V], key K, value V) {
	if e, ok := s.entries[key]; ok {
		e.value = value
		if c.bounded() {
			s.lru.MoveToFront(e.node)
		}
		return
	}
	e := &entry[K, V]{value: value}
	if c.bounded() {
		for s.lru.Len() >= c.capacity {
			oldest, ok := s.lru.RemoveOldest()
			if !ok {
				break
			}
			delete(s.entries, oldest)
			c.evictions.Add(1)
		}
		e.node = s.lru.PushFront(key)
	}
	s.entries[key] = e
}

// Delete removes key and reports whether it was present.
func (c *Sharded[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if e.node != nil {
		s.lru.Remove(e.node)
	}
	delete(s.entries, key)
	return true
}

// Clear removes every entry. Statistics are kept.
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*entry[K, V])
		s.lru.Clear()
		s.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (c *Sharded[K, V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Range calls fn for every entry until fn returns false. Iteration order
// is unspecified and fn must not touch the cache.
func (c *Sharded[K, V]) Range(fn func(K, V) bool) {
	for _, s := range c.shards {
		s.mu.RLock()
		for k, e := range s.entries {
			if !fn(k, e.value) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Sharded[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity * ShardCount,
		Hits:      hits,
		Misses:    misses,
		HitRate:   rate,
		Evictions: c.evictions.Load(),
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the total capacity, or 0 when unbounded.
	Capacity  int
	Hits      uint64
	Misses    uint64
	HitRate   float64
	Evictions uint64
}
