// Package redisserver implements a RESP2-compatible server over a shared
// in-memory keyspace: connection handling, command dispatch, transactions,
// and publish/subscribe.
package redisserver
