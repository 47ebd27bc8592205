// Package http provides a fluent HTTP client for outgoing calls to the
// FastBite backend.
//
// Usage:
//
//	resp, err := http.Get(base + "/products").
//	    WithContext(ctx).
//	    Bearer(token).
//	    Timeout(15 * time.Second).
//	    Send()
//
//	var products []Product
//	err = resp.JSON(&products)
//
// Requests carry the caller's X-Request-ID and W3C trace headers. Each request
// is sent exactly once; a failed order post must never be replayed.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/reqid"
)

// defaultTransport is the pooled transport used in production, wrapped so
// every call becomes a client span.
var defaultTransport gohttp.RoundTripper = otelhttp.NewTransport(&gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
})

// DefaultClient is the shared HTTP client used by all outgoing requests.
// Tests can swap DefaultClient.Transport to intercept calls:
//
//	http.DefaultClient.Transport = myMockTransport
//	defer http.ResetTransport()
var DefaultClient = &gohttp.Client{
	Transport: defaultTransport,
}

// ResetTransport restores the production transport on DefaultClient.
func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// DefaultTimeout bounds a request when Timeout is not called.
const DefaultTimeout = 15 * time.Second

// ------------------- Request -------------------

// Request is a fluent HTTP request builder.
type Request struct {
	method  string
	url     string
	headers map[string]string
	body    any
	timeout time.Duration
	ctx     context.Context
}

// Get starts a GET request.
func Get(url string) *Request { return newRequest(gohttp.MethodGet, url) }

// Post starts a POST request.
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

// Put starts a PUT request.
func Put(url string) *Request { return newRequest(gohttp.MethodPut, url) }

// Delete starts a DELETE request.
func Delete(url string) *Request { return newRequest(gohttp.MethodDelete, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:  method,
		url:     url,
		headers: map[string]string{"Accept": "application/json"},
		timeout: DefaultTimeout,
		ctx:     context.Background(),
	}
}

// Header sets a single request header.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Bearer sets the Authorization: Bearer <token> header.
func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// Body sets the request body. v is marshalled to JSON; []byte is sent as-is.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Timeout bounds the whole exchange, body read included. d <= 0 keeps the default.
func (r *Request) Timeout(d time.Duration) *Request {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// WithContext ties the request to ctx; cancelling ctx aborts it.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// ------------------- Send -------------------

// Send executes the request once and reads the full body.
func (r *Request) Send() (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if id := reqid.FromCtx(r.ctx); id != "" {
		req.Header.Set(reqid.Header, id)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// ------------------- Response -------------------

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}
