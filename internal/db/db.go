// Package db defines the key-value contract behind the gateway's optional cache:
// identity tokens, assistant conversations and token budget counters.
package db

import (
	"context"
	"time"
)

// Store is the full facade handed out by main.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key operations the repositories need. Every key carries a TTL.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// IncrByWithTTL adds val to a counter. The TTL is set only on the first increment of a key.
	IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
}
