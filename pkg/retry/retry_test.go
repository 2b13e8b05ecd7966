package retry

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusError struct {
	status int
	header http.Header
}

func (e *statusError) Error() string   { return "http error" }
func (e *statusError) StatusCode() int { return e.status }
func (e *statusError) RetryAfter() (time.Duration, bool) {
	return ParseRetryAfter(e.header.Get("Retry-After"))
}

func TestWithRetry_RetryAfterOn429(t *testing.T) {
	cfg := Config{
		MaxAttempts:     3,
		BaseDelay:       100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		ExponentialBase: 2.0,
		JitterFactor:    0,
		RetryableStatuses: map[int]bool{
			http.StatusTooManyRequests: true,
		},
	}

	calls := 0
	var observed []Context
	start := time.Now()

	result, err := WithRetry(context.Background(), cfg, func(ctx context.Context) (map[string]bool, error) {
		calls++
		if calls == 1 {
			h := http.Header{}
			h.Set("Retry-After", "2")
			return nil, &statusError{status: 429, header: h}
		}
		return map[string]bool{"ok": true}, nil
	}, func(rc Context) {
		observed = append(observed, rc)
	})

	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, map[string]bool{"ok": true}, result)
	assert.GreaterOrEqual(t, elapsed, 2000*time.Millisecond)
	assert.Less(t, elapsed, 2500*time.Millisecond)
	require.Len(t, observed, 1)
	assert.Equal(t, 1, observed[0].Attempt)
	assert.InDelta(t, 2000, observed[0].NextDelayMs, 50)
}

func TestWithRetry_ExhaustsAndReturnsLastError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond

	calls := 0
	_, err := WithRetry(context.Background(), cfg, func(ctx context.Context) (string, error) {
		calls++
		return "", &statusError{status: http.StatusServiceUnavailable}
	}, nil)

	assert.Equal(t, 3, calls)
	assert.Error(t, err)
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	cfg := DefaultConfig()
	calls := 0
	_, err := WithRetry(context.Background(), cfg, func(ctx context.Context) (string, error) {
		calls++
		return "", &statusError{status: http.StatusBadRequest}
	}, nil)

	assert.Equal(t, 1, calls)
	assert.Error(t, err)
}

func TestDelay_NeverExceedsMaxDelay(t *testing.T) {
	cfg := Config{
		BaseDelay:       100 * time.Millisecond,
		MaxDelay:        time.Second,
		ExponentialBase: 2.0,
		JitterFactor:    0.5,
	}
	for n := 1; n <= 20; n++ {
		d := Delay(n, cfg)
		assert.LessOrEqual(t, d, cfg.MaxDelay)
		assert.GreaterOrEqual(t, d, time.Duration(0))
	}
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseDelay = 50 * time.Millisecond
	cfg.MaxDelay = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(ctx, cfg, func(ctx context.Context) (string, error) {
		calls++
		return "", &statusError{status: http.StatusServiceUnavailable}
	}, nil)

	require.Error(t, err)
}
