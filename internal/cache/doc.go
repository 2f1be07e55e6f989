// Package cache provides the sharded, thread-safe map used for compiled
// shader programs and convolution kernels.
//
//	programs := cache.NewSharded[string, *Program](0, cache.StringHasher)  // unbounded
//	kernels := cache.NewSharded[uint64, []float32](8, cache.Uint64Hasher) // LRU, 8 per shard
//
// Keys are spread over 16 shards by an xxhash of the key so that lookups
// for unrelated keys do not contend on one lock.
package cache
