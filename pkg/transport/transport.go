// Package transport provides the single process-wide keep-alive HTTPS
// client: connection pooling, per-request timeouts, and transparent
// response decompression (gzip, deflate, br).
package transport

import (
	"compress/flate"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Config tunes the shared transport's connection pool and timeouts.
type Config struct {
	MaxIdlePerHost int
	MaxConnsTotal  int
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	KeepAlive      bool
}

// DefaultConfig returns conservative pool sizing: 10 idle connections per
// host, 50 total, with 60s idle and 30s per-request timeouts.
func DefaultConfig() Config {
	return Config{
		MaxIdlePerHost: 10,
		MaxConnsTotal:  50,
		IdleTimeout:    60 * time.Second,
		RequestTimeout: 30 * time.Second,
		KeepAlive:      true,
	}
}

// Stats is a diagnostic snapshot. Active and PendingRequests count the
// requests currently inside Client.Do; Idle reports the configured
// MaxIdlePerHost pool capacity, not a live count of idle connections.
type Stats struct {
	Active          int64
	Idle            int64
	PendingRequests int64
}

// Client is the shared HTTPS client. Construct one per process; callers
// share it across every namespace and command.
type Client struct {
	http    *http.Client
	transp  *http.Transport
	cfg     Config
	pending int64
	active  int64
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if !cfg.KeepAlive {
		dialer.KeepAlive = -1
	} else {
		dialer.KeepAlive = 30 * time.Second
	}

	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.MaxConnsTotal,
		MaxIdleConnsPerHost: cfg.MaxIdlePerHost,
		MaxConnsPerHost:     cfg.MaxConnsTotal,
		IdleConnTimeout:     cfg.IdleTimeout,
		DisableCompression:  true, // we decompress ourselves so Accept-Encoding is honored for br too
	}

	c := &Client{cfg: cfg, transp: base}
	c.http = &http.Client{
		Transport: &decodingRoundTripper{next: base, client: c},
		Timeout:   cfg.RequestTimeout,
	}
	return c
}

// Do executes req, tracking in-flight counters for Stats.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt64(&c.pending, 1)
	atomic.AddInt64(&c.active, 1)
	defer atomic.AddInt64(&c.pending, -1)
	resp, err := c.http.Do(req)
	atomic.AddInt64(&c.active, -1)
	return resp, err
}

// Stats returns a diagnostic snapshot.
func (c *Client) Stats() Stats {
	return Stats{
		Active:          atomic.LoadInt64(&c.active),
		Idle:            int64(c.cfg.MaxIdlePerHost),
		PendingRequests: atomic.LoadInt64(&c.pending),
	}
}

// Shutdown releases idle pooled connections. Must be called on process
// exit; idempotent.
func (c *Client) Shutdown() {
	c.transp.CloseIdleConnections()
}

// decodingRoundTripper sets Accept-Encoding (unless already set by the
// caller) and transparently decodes the response body before handing it
// back, so every downstream caller sees plain bytes.
type decodingRoundTripper struct {
	next   http.RoundTripper
	client *Client
}

func (d *decodingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	}

	resp, err := d.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	encoding := resp.Header.Get("Content-Encoding")
	if encoding == "" {
		return resp, nil
	}

	decoded, err := decompress(encoding, resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("transport: decompress %s body: %w", encoding, err)
	}
	resp.Body = decoded
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	return resp, nil
}

func decompress(encoding string, body io.ReadCloser) (io.ReadCloser, error) {
	switch encoding {
	case "gzip":
		r, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: r, closer: body}, nil
	case "deflate":
		r := flate.NewReader(body)
		return &readCloser{Reader: r, closer: body}, nil
	case "br":
		r := brotli.NewReader(body)
		return &readCloser{Reader: r, closer: body}, nil
	default:
		return body, nil
	}
}

// readCloser adapts a bare io.Reader decoder plus the original response
// body into a single io.ReadCloser that closes both.
type readCloser struct {
	io.Reader
	closer io.Closer
}

func (r *readCloser) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		c.Close()
	}
	return r.closer.Close()
}
