package cache

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
)

// entry is a single memory-tier cache record, with its value type erased
// to any since one cache instance serves every namespace.
type entry struct {
	data      any
	createdAt time.Time
	ttl       time.Duration
	namespace cachekey.Namespace
}

func (e *entry) expired(now time.Time) bool {
	if e.ttl <= 0 {
		return true
	}
	return now.Sub(e.createdAt) >= e.ttl
}

// Stats is the hit/miss/set/eviction counter set for the memory tier.
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Evictions int64
	Size      int64
}

// HitRate returns hits/(hits+misses), 0 when both are zero.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Disk is the subset of *DiskCache the memory tier consults for promotion.
// Kept as an interface so Memory can be tested without a real disk cache.
type Disk interface {
	Read(key string) (any, bool)
	Write(key string, namespace cachekey.Namespace, value any, ttl time.Duration) error
	Invalidate(key string) error
	InvalidateNamespace(ns cachekey.Namespace) error
	Clear() error
}

// Memory is the hot tier: a keyed LRU map with TTL, statistics, and
// synchronous promotion from disk on miss.
type Memory struct {
	mu     sync.Mutex
	lru    *lru.Cache[string, *entry]
	cfg    Config
	disk   Disk
	hits   int64
	misses int64
	sets   int64
	evicts int64
}

// NewMemory constructs the memory tier. disk may be nil (disk tier off).
func NewMemory(cfg Config, disk Disk) (*Memory, error) {
	m := &Memory{cfg: cfg, disk: disk}
	l, err := lru.NewWithEvict[string, *entry](cfg.MaxMemEntries, func(key string, value *entry) {
		atomic.AddInt64(&m.evicts, 1)
	})
	if err != nil {
		return nil, err
	}
	m.lru = l
	return m, nil
}

// HitSource distinguishes a memory hit from a disk-promoted one, so callers
// (pkg/core) can emit distinct cache_hit / disk_cache_hit events.
type HitSource int

const (
	Miss HitSource = iota
	HitMemory
	HitDisk
)

// Get looks up key, promoting from disk on miss.
func (m *Memory) Get(key cachekey.Key) (any, bool) {
	v, _, ok := m.GetWithSource(key)
	return v, ok
}

// GetWithSource is Get plus the hit-source tag.
func (m *Memory) GetWithSource(key cachekey.Key) (any, HitSource, bool) {
	k := key.String()
	m.mu.Lock()
	e, ok := m.lru.Get(k)
	if ok && e.expired(time.Now()) {
		m.lru.Remove(k)
		ok = false
		atomic.AddInt64(&m.evicts, 1)
	}
	m.mu.Unlock()

	if ok {
		atomic.AddInt64(&m.hits, 1)
		return e.data, HitMemory, true
	}

	if m.cfg.DiskEnabled && m.disk != nil {
		if value, found := m.disk.Read(k); found {
			m.promote(key, value)
			atomic.AddInt64(&m.hits, 1)
			return value, HitDisk, true
		}
	}

	atomic.AddInt64(&m.misses, 1)
	return nil, Miss, false
}

// promote copies a disk hit into memory without touching hit/miss counters
// (the caller already counts the hit).
func (m *Memory) promote(key cachekey.Key, value any) {
	ttl := m.cfg.EffectiveTTL(key.Namespace, 0)
	m.mu.Lock()
	m.lru.Add(key.String(), &entry{data: value, createdAt: time.Now(), ttl: ttl, namespace: key.Namespace})
	m.mu.Unlock()
}

// Set stores value under key. override, when non-zero, takes precedence
// over the namespace/default TTL; a negative override stores an entry
// that is already expired.
func (m *Memory) Set(key cachekey.Key, value any, override time.Duration) {
	ttl := m.cfg.EffectiveTTL(key.Namespace, override)
	k := key.String()

	m.mu.Lock()
	m.lru.Add(k, &entry{data: value, createdAt: time.Now(), ttl: ttl, namespace: key.Namespace})
	m.mu.Unlock()
	atomic.AddInt64(&m.sets, 1)

	if m.cfg.DiskEnabled && m.disk != nil {
		go m.disk.Write(k, key.Namespace, value, ttl)
	}
}

// Invalidate removes key, or every key in ns when key.Identifiers is empty
// and key.Empty() reports the namespace-wide case — callers pass a
// namespace-only Key to invalidate the whole namespace.
func (m *Memory) Invalidate(key cachekey.Key) {
	if key.Empty() {
		m.invalidateNamespace(key.Namespace)
		return
	}
	k := key.String()
	m.mu.Lock()
	if m.lru.Remove(k) {
		atomic.AddInt64(&m.evicts, 1)
	}
	m.mu.Unlock()

	if m.cfg.DiskEnabled && m.disk != nil {
		m.disk.Invalidate(k)
	}
}

func (m *Memory) invalidateNamespace(ns cachekey.Namespace) {
	m.mu.Lock()
	for _, k := range m.lru.Keys() {
		if e, ok := m.lru.Peek(k); ok && e.namespace == ns {
			m.lru.Remove(k)
			atomic.AddInt64(&m.evicts, 1)
		}
	}
	m.mu.Unlock()

	if m.cfg.DiskEnabled && m.disk != nil {
		m.disk.InvalidateNamespace(ns)
	}
}

// Clear drops every entry, mirroring to disk.
func (m *Memory) Clear() {
	m.mu.Lock()
	n := m.lru.Len()
	m.lru.Purge()
	m.mu.Unlock()
	atomic.AddInt64(&m.evicts, int64(n))

	if m.cfg.DiskEnabled && m.disk != nil {
		m.disk.Clear()
	}
}

// Stats returns a snapshot of the counters.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	size := int64(m.lru.Len())
	m.mu.Unlock()
	return Stats{
		Hits:      atomic.LoadInt64(&m.hits),
		Misses:    atomic.LoadInt64(&m.misses),
		Sets:      atomic.LoadInt64(&m.sets),
		Evictions: atomic.LoadInt64(&m.evicts),
		Size:      size,
	}
}
