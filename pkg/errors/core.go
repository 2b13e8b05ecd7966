package errors

import "fmt"

// Kind enumerates the error taxonomy from the spec: every fallible
// operation inside the request-execution core returns one of these.
type Kind int

const (
	// KindTransport is a network failure reaching the remote (DNS, TLS,
	// reset, timeout). Retryable.
	KindTransport Kind = iota
	// KindRateLimited means the remote signaled throttling. Retryable;
	// honors Retry-After.
	KindRateLimited
	// KindServerTransient covers 5xx / 408 responses. Retryable.
	KindServerTransient
	// KindClient covers 4xx responses other than 408/429. Non-retryable.
	KindClient
	// KindAuth means a missing or invalid credential. Non-retryable.
	KindAuth
	// KindNotFound means the remote reported absence. Non-retryable.
	KindNotFound
	// KindValidation is a caller-side argument problem caught before
	// transport. Non-retryable.
	KindValidation
	// KindCircuitOpen means the breaker refused the call without
	// invoking it. Non-retryable by default.
	KindCircuitOpen
	// KindCacheCorruption means a disk cache file was unreadable; this
	// kind is recovered silently inside pkg/cache and should not
	// normally escape the package.
	KindCacheCorruption
	// KindCancelled means the caller cancelled its context.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRateLimited:
		return "rate_limited"
	case KindServerTransient:
		return "server_transient"
	case KindClient:
		return "client"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindCircuitOpen:
		return "circuit_open"
	case KindCacheCorruption:
		return "cache_corruption"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Retryable reports whether this kind of failure is, in general, worth
// retrying — independent of any explicit "retryable: false" hint the
// caller may attach (see Error.Retryable for the hint-aware check).
func (k Kind) Retryable() bool {
	switch k {
	case KindTransport, KindRateLimited, KindServerTransient:
		return true
	default:
		return false
	}
}

// Error is the core taxonomy error. pkg/notionapi classifies request
// failures into it (possibly behind a wrapper that AsCore unwraps), and
// pkg/retry annotates it with attempt context on exhaustion.
type Error struct {
	Kind      Kind
	Op        string // "GET /pages/{id}", "disk.read", "dedup.execute", ...
	Cause     error
	Attempts  int // populated by pkg/retry on exhaustion
	ElapsedMs int64
	// NotRetryable, when set true explicitly by the caller/classifier,
	// overrides Kind.Retryable() regardless of the kind's default
	// classification.
	NotRetryable bool
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s (after %d attempts, %dms)", msg, e.Attempts, e.ElapsedMs)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether this specific error instance should be
// retried, honoring an explicit non-retryable hint over the kind's
// default classification.
func (e *Error) Retryable() bool {
	if e.NotRetryable {
		return false
	}
	return e.Kind.Retryable()
}

// New constructs a core Error.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// WithAttempts annotates a final retry-exhaustion error with attempt
// count and elapsed time. The underlying error is otherwise unchanged.
func (e *Error) WithAttempts(attempts int, elapsedMs int64) *Error {
	e.Attempts = attempts
	e.ElapsedMs = elapsedMs
	return e
}

// AsCore unwraps err (via errors.As semantics, hand-rolled to avoid an
// import collision with this package's own name) into a *Error if
// possible.
func AsCore(err error) (*Error, bool) {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			return ce, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// Transport, RateLimited, ServerTransient, Client, Auth, NotFound,
// Validation, CircuitOpen, CacheCorruption and Cancelled are
// convenience constructors mirroring the Kind constants one-to-one.

func Transport(op string, cause error) *Error       { return New(KindTransport, op, cause) }
func RateLimited(op string, cause error) *Error     { return New(KindRateLimited, op, cause) }
func ServerTransient(op string, cause error) *Error { return New(KindServerTransient, op, cause) }
func Client(op string, cause error) *Error          { return New(KindClient, op, cause) }
func Auth(op string, cause error) *Error            { return New(KindAuth, op, cause) }
func NotFound(op string, cause error) *Error        { return New(KindNotFound, op, cause) }
func Validation(op string, cause error) *Error      { return New(KindValidation, op, cause) }
func CircuitOpen(op string) *Error {
	return &Error{Kind: KindCircuitOpen, Op: op, NotRetryable: true}
}
func CacheCorruption(op string, cause error) *Error {
	return &Error{Kind: KindCacheCorruption, Op: op, Cause: cause, NotRetryable: true}
}
func Cancelled(op string, cause error) *Error {
	return &Error{Kind: KindCancelled, Op: op, Cause: cause, NotRetryable: true}
}
