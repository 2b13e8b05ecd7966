package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coastalprograms/notion-cli-go/pkg/cache"
	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/coastalprograms/notion-cli-go/pkg/retry"
	"github.com/coastalprograms/notion-cli-go/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCore(t *testing.T) *Core {
	t.Helper()
	cfg := Config{
		Retry:          retry.DefaultConfig(),
		Breaker:        retry.DefaultBreakerConfig(),
		BreakerEnabled: false,
		Cache:          cache.DefaultConfig(),
		Transport:      transport.DefaultConfig(),
		DedupEnabled:   true,
	}
	cfg.Cache.DiskEnabled = false
	c, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	return c
}

func TestFetch_ConcurrentDedupOfIdenticalReads(t *testing.T) {
	c := testCore(t)
	var calls int64
	key := cachekey.New(cachekey.NamespacePage, "p1")

	fn := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(100 * time.Millisecond)
		return "X", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := Fetch(c, context.Background(), key, fn, FetchOptions{})
			require.NoError(t, err)
			results[idx] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for _, v := range results {
		assert.Equal(t, "X", v)
	}

	stats := c.dedup.Stats()
	assert.Equal(t, int64(9), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestFetch_CacheHitSkipsFn(t *testing.T) {
	c := testCore(t)
	key := cachekey.New(cachekey.NamespacePage, "p1")
	var calls int64

	fn := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "v1", nil
	}

	v1, err := Fetch(c, context.Background(), key, fn, FetchOptions{})
	require.NoError(t, err)
	v2, err := Fetch(c, context.Background(), key, fn, FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "v1", v1)
	assert.Equal(t, "v1", v2)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestFetch_NoCacheBypassesCache(t *testing.T) {
	c := testCore(t)
	key := cachekey.New(cachekey.NamespacePage, "p1")
	var calls int64

	fn := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "v", nil
	}

	_, err := Fetch(c, context.Background(), key, fn, FetchOptions{NoCache: true})
	require.NoError(t, err)
	_, err = Fetch(c, context.Background(), key, fn, FetchOptions{NoCache: true})
	require.NoError(t, err)

	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestFetch_PropagatesErrorWithoutCaching(t *testing.T) {
	c := testCore(t)
	key := cachekey.New(cachekey.NamespacePage, "p1")
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 1

	fn := func(ctx context.Context) (string, error) {
		return "", assertErr("boom")
	}

	_, err := Fetch(c, context.Background(), key, fn, FetchOptions{Retry: &cfg})
	assert.Error(t, err)

	_, _, ok := c.memory.GetWithSource(key)
	assert.False(t, ok, "a failed fetch must not write to cache")
}

func TestInvalidate_RemovesCachedValue(t *testing.T) {
	c := testCore(t)
	key := cachekey.New(cachekey.NamespacePage, "p1")
	fn := func(ctx context.Context) (string, error) { return "v", nil }

	_, err := Fetch(c, context.Background(), key, fn, FetchOptions{})
	require.NoError(t, err)

	c.Invalidate(key)

	var calls int64
	fn2 := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "v2", nil
	}
	v, err := Fetch(c, context.Background(), key, fn2, FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
