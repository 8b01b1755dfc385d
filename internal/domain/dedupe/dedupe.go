// Package dedupe guards against starting the same grading twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper tracks keys that are currently claimed.
type Deduper interface {
	// Claim records key and returns true when the caller now owns it. It
	// returns false when key is already claimed or the set is full.
	Claim(ctx context.Context, key string) bool

	// Release drops a claim so the key can be claimed again.
	Release(ctx context.Context, key string)

	// Size is the number of live claims.
	Size() int64
}

// inMemoryDeduper keeps claims in a map. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	claimed map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a Deduper with options applied.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{claimed: make(map[string]struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.claimed[key]; exists {
		return false
	}
	if d.maxSize > 0 && len(d.claimed) >= d.maxSize {
		return false
	}
	d.claimed[key] = struct{}{}
	d.size.Add(1)
	return true
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.claimed[key]; exists {
		delete(d.claimed, key)
		d.size.Add(-1)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
