// Package dedupe tracks idempotency keys so retried requests are recognised.
package dedupe

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxSize bounds the cache when no size is configured.
const DefaultMaxSize = 10000

// Deduper records seen keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed attempt can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key scopes a client supplied idempotency key to one resource.
func Key(scope, key string) string {
	return scope + "\x00" + key
}

// inMemoryDeduper keeps keys in an LRU cache when bounded and in a plain map
// otherwise. The least recently recorded key is evicted first.
type inMemoryDeduper struct {
	maxSize int

	cache *lru.Cache[string, struct{}]

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	if d.maxSize > 0 {
		// lru.New only fails for a non-positive size.
		d.cache, _ = lru.New[string, struct{}](d.maxSize)
	} else {
		d.seen = make(map[string]struct{})
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	if d.cache != nil {
		seen, _ := d.cache.ContainsOrAdd(key, struct{}{})
		return seen
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	if d.cache != nil {
		d.cache.Remove(key)
		return
	}

	d.mu.Lock()
	delete(d.seen, key)
	d.mu.Unlock()
}

// Size returns the current number of keys held.
func (d *inMemoryDeduper) Size() int64 {
	if d.cache != nil {
		return int64(d.cache.Len())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
