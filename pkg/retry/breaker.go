package retry

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"

	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

// BreakerConfig tunes how many consecutive failures trip the breaker, how
// many successes in half-open close it again, and how long it stays open.
type BreakerConfig struct {
	FailureThreshold uint32
	SuccessThreshold uint32
	Timeout          time.Duration
}

// DefaultBreakerConfig returns conservative defaults: trip after 5
// consecutive failures, require 2 successes in half-open to close, and
// wait 60s before probing again.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          60 * time.Second,
	}
}

// Breaker wraps a gobreaker.CircuitBreaker[any] behind the standard
// Closed/Open/HalfOpen model. It is generic-call-site friendly: the
// package-level Execute[T] type-asserts the any-typed result back to T,
// since gobreaker's registry can't hold one breaker type per T.
type Breaker struct {
	mu  sync.RWMutex
	cb  *gobreaker.CircuitBreaker[any]
	cfg BreakerConfig
	op  string
}

// NewBreaker constructs a Breaker for a single namespace/operation label.
// Interval is left at zero, for which gobreaker never clears Counts
// during the Closed state (no rolling window); tripping is decided on
// ConsecutiveFailures.
func NewBreaker(op string, cfg BreakerConfig) *Breaker {
	b := &Breaker{cfg: cfg, op: op}
	b.cb = b.newGobreaker()
	return b
}

func (b *Breaker) newGobreaker() *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        b.op,
		MaxRequests: b.cfg.SuccessThreshold,
		Interval:    0,
		Timeout:     b.cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.cfg.FailureThreshold
		},
	})
}

// Execute runs fn through the breaker. If the breaker is open, fn is never
// invoked and a CircuitOpen core error is returned.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	b.mu.RLock()
	cb := b.cb
	b.mu.RUnlock()

	result, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return zero, coreerrors.CircuitOpen(b.op)
		}
		return zero, err
	}
	return result.(T), nil
}

// State projects gobreaker's state onto the Closed/Open/HalfOpen
// vocabulary callers expect.
func (b *Breaker) State() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	switch b.cb.State() {
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Reset forces the breaker back to Closed with zeroed counters. gobreaker
// has no direct reset call, so this swaps in a freshly constructed breaker
// under the write lock.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cb = b.newGobreaker()
}

// Registry keeps one Breaker per namespace, lazily constructed.
type Registry struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	breakers map[string]*Breaker
}

// NewRegistry constructs an empty Registry using cfg for every namespace
// breaker it lazily creates.
func NewRegistry(cfg BreakerConfig) *Registry {
	return &Registry{cfg: cfg, breakers: make(map[string]*Breaker)}
}

// Get returns the Breaker for namespace, creating it on first use.
func (r *Registry) Get(namespace string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[namespace]; ok {
		return b
	}
	b := NewBreaker(namespace, r.cfg)
	r.breakers[namespace] = b
	return b
}

// ResetAll forces every known breaker back to Closed.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()
	for _, b := range breakers {
		b.Reset()
	}
}
