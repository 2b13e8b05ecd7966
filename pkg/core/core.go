// Package core implements the Cached Fetcher: the single orchestrator
// primitive every command handler calls, combining the transport, retry
// engine, circuit breaker, two-tier cache, deduplicator and batch
// executor into fetch(key, fn) -> T.
package core

import (
	"context"
	"sync"
	"time"

	"github.com/coastalprograms/notion-cli-go/pkg/batch"
	"github.com/coastalprograms/notion-cli-go/pkg/cache"
	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/coastalprograms/notion-cli-go/pkg/dedup"
	"github.com/coastalprograms/notion-cli-go/pkg/retry"
	"github.com/coastalprograms/notion-cli-go/pkg/transport"
)

// Config bundles the sub-component configs the Core constructs from.
type Config struct {
	Retry           retry.Config
	Breaker         retry.BreakerConfig
	BreakerEnabled  bool
	Cache           cache.Config
	Transport       transport.Config
	DedupEnabled    bool
	DeleteConcurrency   int
	ChildrenConcurrency int
	Verbose         bool
}

// Core is the explicit, dependency-injected request context, deliberately
// avoiding process-wide singletons. Construct one via pkg/di and pass it
// to command handlers; core.Default/SetDefault exist only as a
// convenience wrapper for cmd/ncli's main.
type Core struct {
	cfg       Config
	transport *transport.Client
	memory    *cache.Memory
	disk      *cache.DiskCache
	dedup     *dedup.Deduplicator
	breakers  *retry.Registry
	events    EventSink
}

// New constructs a Core from cfg. events may be nil (defaults to a no-op
// sink unless cfg.Verbose, in which case a stderr zap sink is used).
func New(cfg Config, events EventSink) (*Core, error) {
	c := &Core{cfg: cfg, dedup: dedup.New(), breakers: retry.NewRegistry(cfg.Breaker)}

	c.transport = transport.New(cfg.Transport)

	var diskCache cache.Disk
	if cfg.Cache.DiskEnabled {
		d, err := cache.NewDisk(cfg.Cache)
		if err != nil {
			return nil, err
		}
		c.disk = d
		diskCache = d
	}

	mem, err := cache.NewMemory(cfg.Cache, diskCache)
	if err != nil {
		return nil, err
	}
	c.memory = mem

	switch {
	case events != nil:
		c.events = events
	case cfg.Verbose:
		c.events = NewZapSink(nil)
	default:
		c.events = noopSink{}
	}

	return c, nil
}

// Transport exposes the shared HTTPS client for pkg/notionapi.
func (c *Core) Transport() *transport.Client { return c.transport }

// FetchOptions are the per-call overrides Fetch accepts.
type FetchOptions struct {
	TTL      time.Duration
	NoCache  bool
	Retry    *retry.Config
	Breaker  bool // whether to wrap this namespace's call in a circuit breaker
}

// Fetch checks the memory cache, falls through disk promotion, then runs
// fn through the deduplicator, circuit breaker, and retry engine in turn,
// and populates the cache on success. It is a package-level generic
// function rather than a method because Go does not allow type parameters
// on methods.
func Fetch[T any](c *Core, ctx context.Context, key cachekey.Key, fn func(ctx context.Context) (T, error), opts FetchOptions) (T, error) {
	var zero T

	cacheOn := c.cfg.Cache.Enabled && !opts.NoCache

	if cacheOn {
		if value, source, ok := c.memory.GetWithSource(key); ok {
			typed, assignable := value.(T)
			if assignable {
				c.emitHit(key, source)
				return typed, nil
			}
		}
	}

	retryCfg := c.cfg.Retry
	if opts.Retry != nil {
		retryCfg = *opts.Retry
	}

	execute := func() (T, error) {
		run := func(ctx context.Context) (T, error) { return fn(ctx) }
		if opts.Breaker && c.cfg.BreakerEnabled {
			breaker := c.breakers.Get(string(key.Namespace))
			return retry.Execute(breaker, func() (T, error) {
				return retry.WithRetry(ctx, retryCfg, run, c.observeRetry)
			})
		}
		return retry.WithRetry(ctx, retryCfg, run, c.observeRetry)
	}

	var value T
	var err error
	if c.cfg.DedupEnabled {
		value, err = dedup.Execute(c.dedup, key.String(), execute)
	} else {
		value, err = execute()
	}
	if err != nil {
		return zero, err
	}

	if cacheOn {
		c.memory.Set(key, value, opts.TTL)
		c.events.Emit(Event{Event: "cache_set", Namespace: string(key.Namespace), Key: key.String(), Level: "debug"})
	}

	return value, nil
}

func (c *Core) emitHit(key cachekey.Key, source cache.HitSource) {
	name := "cache_hit"
	if source == cache.HitDisk {
		name = "disk_cache_hit"
	}
	c.events.Emit(Event{Event: name, Namespace: string(key.Namespace), Key: key.String(), Level: "debug"})
}

func (c *Core) observeRetry(rc retry.Context) {
	c.events.Emit(Event{Event: "retry_attempt", Level: "warn"})
}

// Invalidate removes key (or the whole namespace, when key carries no
// identifiers) from both cache tiers.
func (c *Core) Invalidate(key cachekey.Key) {
	c.memory.Invalidate(key)
	c.events.Emit(Event{Event: "cache_invalidate", Namespace: string(key.Namespace), Key: key.String(), Level: "debug"})
}

// Batch runs operations with bounded concurrency via pkg/batch, exposed
// here so callers go through one Core surface.
func (c *Core) Batch(operations []batch.Operation[any], concurrency int) []batch.Result[any] {
	return batch.Run(operations, batch.Options{Concurrency: concurrency})
}

// Breakers exposes the breaker registry for manual resets.
func (c *Core) Breakers() *retry.Registry { return c.breakers }

// Shutdown is a single idempotent shutdown path: it stops the disk-flush
// timer and closes the transport's idle connections. Disk writes that
// Memory.Set has already started in the background are not waited for,
// and Fetch calls made after Shutdown are not rejected.
func (c *Core) Shutdown() {
	if c.disk != nil {
		c.disk.Shutdown()
	}
	c.transport.Shutdown()
}

var (
	defaultMu   sync.RWMutex
	defaultCore *Core
)

// SetDefault installs c as the process-wide convenience Core used by
// Default(). This exists only as a thin wrapper around an explicitly
// constructed Core — pkg/di's core provider is the only caller, and
// cmd/ncli's main reads it back through Default to shut it down.
func SetDefault(c *Core) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCore = c
}

// Default returns the process-wide Core installed by SetDefault, or nil
// if none has been installed.
func Default() *Core {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCore
}
