// Package cache stores computed graphs, layouts and reports keyed by a hash
// of the document text and the options that produced them.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// servers sharing results, and [NullCache] when caching is disabled. A
// [Keyer] derives keys; [ScopedKeyer] namespaces them.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values. A miss is reported as (nil, false, nil);
// errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes. Results depend only on their key, so the TTLs bound disk
// and memory use rather than staleness.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLReport   = 7 * 24 * time.Hour
	TTLAnalysis = 24 * time.Hour
)
