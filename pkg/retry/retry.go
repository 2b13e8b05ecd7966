// Package retry implements the adaptive retry engine: exponential backoff
// with jitter, Retry-After honoring, and the retryable-error classification
// that pkg/core's cached fetcher wraps around every upstream call.
package retry

import (
	"context"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

// Config tunes attempt count, backoff shape, and which failures qualify
// as retryable.
type Config struct {
	MaxAttempts         int
	BaseDelay           time.Duration
	MaxDelay            time.Duration
	ExponentialBase     float64
	JitterFactor        float64 // in [0,1]
	RetryableStatuses   map[int]bool
	RetryableErrorCodes map[string]bool
}

// DefaultConfig returns conservative defaults: three attempts, 100ms base
// backoff doubling up to 10s, and the standard set of transient HTTP
// statuses and Notion API error codes.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		BaseDelay:       100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		ExponentialBase: 2.0,
		JitterFactor:    0.25,
		RetryableStatuses: map[int]bool{
			http.StatusRequestTimeout:      true, // 408
			http.StatusTooManyRequests:     true, // 429
			http.StatusInternalServerError: true, // 500
			http.StatusBadGateway:          true, // 502
			http.StatusServiceUnavailable:  true, // 503
			http.StatusGatewayTimeout:      true, // 504
		},
		RetryableErrorCodes: map[string]bool{
			"rate_limited":          true,
			"service_unavailable":   true,
			"internal_server_error": true,
			"conflict_error":        true,
		},
	}
}

// Context is passed to an Observer on every retry decision.
type Context struct {
	Attempt     int
	MaxAttempts int
	LastError   error
	NextDelayMs int64
}

// Observer is notified before each retry sleep.
type Observer func(Context)

// RetryAfterer is implemented by response-carrying errors: RetryAfter
// returns the Retry-After value (seconds or HTTP-date) the error carries,
// or (0, false).
type RetryAfterer interface {
	RetryAfter() (time.Duration, bool)
}

// StatusCoder lets a response-carrying error expose its HTTP status for
// classification without pkg/retry importing pkg/notionapi.
type StatusCoder interface {
	StatusCode() int
}

// Coder lets an error expose a remote API sentinel code (e.g. "rate_limited").
type Coder interface {
	Code() string
}

// NotRetryabler lets an error declare an explicit override: any error
// carrying an explicit "not retryable" hint is excluded from retry even
// if it would otherwise match a retryable status, code, or network class.
type NotRetryabler interface {
	NotRetryable() bool
}

// IsRetryable classifies err against cfg: an explicit non-retryable hint
// always wins, then core error kind, then HTTP status, API error code,
// and finally network-level heuristics.
func IsRetryable(err error, cfg Config) bool {
	if err == nil {
		return false
	}
	if nr, ok := err.(NotRetryabler); ok && nr.NotRetryable() {
		return false
	}
	if ce, ok := coreerrors.AsCore(err); ok {
		if ce.NotRetryable {
			return false
		}
		if ce.Kind.Retryable() {
			return true
		}
	}
	if sc, ok := err.(StatusCoder); ok && cfg.RetryableStatuses[sc.StatusCode()] {
		return true
	}
	if c, ok := err.(Coder); ok && cfg.RetryableErrorCodes[c.Code()] {
		return true
	}
	return isRetryableNetworkError(err)
}

func isRetryableNetworkError(err error) bool {
	var netErr net.Error
	if ok := asNetError(err, &netErr); ok && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection reset", "connection refused", "broken pipe",
		"timeout", "deadline exceeded", "no such host", "temporary failure",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func asNetError(err error, target *net.Error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			*target = ne
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Delay computes the backoff for attempt n (1-indexed):
// delay(n) = min(maxDelay, baseDelay * exponentialBase^(n-1)) * (1 ± jitterFactor).
func Delay(n int, cfg Config) time.Duration {
	raw := float64(cfg.BaseDelay) * math.Pow(cfg.ExponentialBase, float64(n-1))
	if raw > float64(cfg.MaxDelay) {
		raw = float64(cfg.MaxDelay)
	}
	jitter := raw * cfg.JitterFactor * (rand.Float64()*2 - 1)
	d := time.Duration(raw + jitter)
	if d < 0 {
		d = 0
	}
	if d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}

// ParseRetryAfter parses an HTTP Retry-After header value, accepting both
// the delay-seconds and HTTP-date forms.
func ParseRetryAfter(header string) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

// WithRetry runs fn up to cfg.MaxAttempts times. fn returns the result
// value and an error; a non-nil, non-retryable error or context
// cancellation stops the loop immediately.
func WithRetry[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error), observer Observer) (T, error) {
	var zero T
	start := time.Now()
	var lastErr error
	attemptsMade := 0

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		attemptsMade = attempt
		select {
		case <-ctx.Done():
			return zero, coreerrors.Cancelled("retry.wait", ctx.Err())
		default:
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts || !IsRetryable(err, cfg) {
			break
		}

		delay := Delay(attempt, cfg)
		if ra, ok := err.(RetryAfterer); ok {
			if d, present := ra.RetryAfter(); present {
				delay = d
				if delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			}
		}

		if observer != nil {
			observer(Context{
				Attempt:     attempt,
				MaxAttempts: cfg.MaxAttempts,
				LastError:   lastErr,
				NextDelayMs: delay.Milliseconds(),
			})
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, coreerrors.Cancelled("retry.wait", ctx.Err())
		case <-timer.C:
		}
	}

	elapsed := time.Since(start).Milliseconds()
	if ce, ok := coreerrors.AsCore(lastErr); ok {
		return zero, ce.WithAttempts(attemptsMade, elapsed)
	}
	return zero, lastErr
}
