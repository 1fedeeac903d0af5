// Package cmap provides a generic sharded concurrent map.
//
// Sharding spreads keys across a fixed number of independently-locked
// buckets, so unrelated keys don't contend on the same RWMutex:
//
//   - Sharding: Configurable shard count for parallelism
//   - Fine-grained Locking: Per-shard RWMutex for minimal contention
//   - Optimistic Locking: Version-based compare-and-swap updates
//   - Iteration: Safe iteration while holding read locks
//
// Usage:
//
//	m := cmap.NewWithShards[string, *rate.Limiter](32)
//	m.Set("203.0.113.7", limiter)
//	val, ok := m.Get("203.0.113.7")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
