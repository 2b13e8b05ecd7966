// Package notionapi is the thin REST client that supplies the
// caller-supplied "request function" pkg/core.Fetch wraps in cache,
// dedup, retry and breaker logic. It does not parse or validate the
// remote API's JSON schema: callers decode the raw response body
// themselves into whatever shape they need.
package notionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
	"github.com/coastalprograms/notion-cli-go/pkg/retry"
	"github.com/coastalprograms/notion-cli-go/pkg/transport"
)

const defaultVersion = "2022-06-28"

// Client is a minimal REST client over a Notion-like document API,
// built on the shared keep-alive transport. One Client is constructed
// per process and shared across every namespace and command.
type Client struct {
	transport *transport.Client
	baseURL   string
	token     string
	version   string
}

// New builds a Client. baseURL is typically "https://api.notion.com/v1".
func New(t *transport.Client, baseURL, token string) *Client {
	return &Client{transport: t, baseURL: strings.TrimRight(baseURL, "/"), token: token, version: defaultVersion}
}

// Response is the raw result of a request: the caller decodes Body
// itself (pkg/notionapi never unmarshals domain JSON).
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Get issues a GET to path (e.g. "/databases/{id}").
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST with a JSON-marshaled body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Patch issues a PATCH with a JSON-marshaled body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	op := fmt.Sprintf("%s %s", method, path)

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, coreerrors.Validation(op, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reqBody)
	if err != nil {
		return nil, coreerrors.Validation(op, err)
	}
	c.setHeaders(req, body != nil)

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, coreerrors.Transport(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, coreerrors.Transport(op, err)
	}

	if err := classifyStatus(op, resp.StatusCode, respBody, resp.Header); err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody, Header: resp.Header}, nil
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// classifyStatus maps an HTTP response status into the core error
// taxonomy so pkg/retry's IsRetryable sees a StatusCoder/RetryAfterer,
// exactly as the retryable classifier in pkg/retry expects. header is
// threaded through so a Retry-After on a 429/503 survives into the
// returned error for WithRetry to honor.
func classifyStatus(op string, status int, body []byte, header http.Header) error {
	if status >= 200 && status < 300 {
		return nil
	}

	cause := fmt.Errorf("status %d: %s", status, truncate(body, 256))
	retryAfter := header.Get("Retry-After")
	switch {
	case status == http.StatusTooManyRequests:
		return &statusError{err: coreerrors.RateLimited(op, cause), status: status, retryAfter: retryAfter}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &statusError{err: coreerrors.Auth(op, cause), status: status}
	case status == http.StatusNotFound:
		return &statusError{err: coreerrors.NotFound(op, cause), status: status}
	case status == http.StatusRequestTimeout || status >= 500:
		return &statusError{err: coreerrors.ServerTransient(op, cause), status: status, retryAfter: retryAfter}
	default:
		return &statusError{err: coreerrors.Client(op, cause), status: status}
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// statusError pairs a core taxonomy error with the HTTP status that
// produced it, so pkg/retry.IsRetryable's StatusCoder check works
// without pkg/retry importing net/http.
type statusError struct {
	err        *coreerrors.Error
	status     int
	retryAfter string // raw Retry-After header value, if any
}

func (e *statusError) Error() string { return e.err.Error() }

// Unwrap exposes the core taxonomy error so coreerrors.AsCore sees its Kind.
func (e *statusError) Unwrap() error { return e.err }

func (e *statusError) StatusCode() int { return e.status }

// RetryAfter satisfies pkg/retry.RetryAfterer so WithRetry honors a
// server-specified delay instead of its own exponential backoff.
func (e *statusError) RetryAfter() (time.Duration, bool) {
	return retry.ParseRetryAfter(e.retryAfter)
}
