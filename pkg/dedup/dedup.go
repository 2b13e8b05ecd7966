// Package dedup collapses concurrent identical in-flight calls into a
// single upstream invocation via golang.org/x/sync/singleflight.
package dedup

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Stats tracks dedup hit/miss counts. singleflight's own "shared" result
// is true for the executor and the joiners alike, so it cannot tell a
// caller which of the two it was; Execute instead classifies each call by
// whether a per-key entry already existed in a side map when it arrived.
type Stats struct {
	Hits   int64 // calls that joined an in-flight execution
	Misses int64 // calls that became the executor
}

// Deduplicator maps an in-flight request key to a shared execution.
// Spec.md §4.F: used only for side-effect-free reads; write operations
// must bypass it entirely (enforced by the caller, pkg/core).
type Deduplicator struct {
	group   singleflight.Group
	waiters sync.Map // key -> *int64, counts in-flight joiners for stats only
	hits    int64
	misses  int64
}

// New constructs an empty Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{}
}

// Execute runs fn for key, or joins an already in-flight execution for the
// same key. All concurrent callers observe the identical value or error;
// a call starting after the in-flight execution completes always triggers
// a new invocation.
func Execute[T any](d *Deduplicator, key string, fn func() (T, error)) (T, error) {
	counterAny, loaded := d.waiters.LoadOrStore(key, new(int64))
	counter := counterAny.(*int64)
	if loaded {
		atomic.AddInt64(counter, 1)
		atomic.AddInt64(&d.hits, 1)
	} else {
		atomic.AddInt64(&d.misses, 1)
	}

	value, err, _ := d.group.Do(key, func() (any, error) {
		return fn()
	})

	d.waiters.Delete(key)

	var zero T
	if err != nil {
		return zero, err
	}
	return value.(T), nil
}

// Stats returns a snapshot of the hit/miss counters.
func (d *Deduplicator) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&d.hits),
		Misses: atomic.LoadInt64(&d.misses),
	}
}

// PendingCount reports how many keys currently have an in-flight
// execution. Always non-negative.
func (d *Deduplicator) PendingCount() int {
	n := 0
	d.waiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
