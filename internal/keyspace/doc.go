// Package keyspace implements the in-memory data model: a fixed number of
// numbered databases, each mapping keys to typed entries (string, list, set,
// hash or sorted set) with optional expiration.
//
// The whole keyspace — every database, not just one — is protected by a
// single mutex. Callers that need several operations to be atomic (a
// command handler spanning a read-then-write, or a multi-key command) take
// the lock once with Lock/Unlock and then use the exported, lock-assuming
// accessors on *DB (Get, Put, Delete, ...). Lock/Unlock around a single call is the right shape for
// callers outside the command dispatcher, such as the snapshotter.
package keyspace
