// Package cache implements the two-tier (in-memory + on-disk) cache:
// per-namespace TTLs, LRU eviction, and atomic disk persistence.
package cache

import (
	"time"

	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
)

// Config controls both cache tiers: memory capacity, default and
// per-namespace TTLs, and disk size/sync settings.
type Config struct {
	Enabled        bool
	DefaultTTL     time.Duration
	MaxMemEntries  int
	TTLByNamespace map[cachekey.Namespace]time.Duration

	DiskEnabled      bool
	DiskMaxBytes     int64
	DiskSyncInterval time.Duration
	DiskRoot         string
}

// DefaultConfig returns sensible per-namespace TTL defaults: data sources
// and databases change rarely (10 min), users rarer still (60 min), while
// pages, blocks, and search results churn quickly (30-60 s).
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		DefaultTTL:    5 * time.Minute,
		MaxMemEntries: 1000,
		TTLByNamespace: map[cachekey.Namespace]time.Duration{
			cachekey.NamespaceDataSource: 10 * time.Minute,
			cachekey.NamespaceDatabase:   10 * time.Minute,
			cachekey.NamespaceUser:       60 * time.Minute,
			cachekey.NamespacePage:       60 * time.Second,
			cachekey.NamespaceBlock:      30 * time.Second,
			cachekey.NamespaceSearch:     30 * time.Second,
		},
		DiskEnabled:      true,
		DiskMaxBytes:     256 * 1024 * 1024,
		DiskSyncInterval: 30 * time.Second,
		DiskRoot:         "", // resolved by NewDisk to $HOME/.notion-cli/cache
	}
}

// EffectiveTTL resolves the TTL precedence: explicit (non-zero) override,
// then per-namespace config, then DefaultTTL. A negative override yields
// an entry that is already expired.
func (c Config) EffectiveTTL(ns cachekey.Namespace, override time.Duration) time.Duration {
	if override != 0 {
		return override
	}
	if ttl, ok := c.TTLByNamespace[ns]; ok {
		return ttl
	}
	return c.DefaultTTL
}
