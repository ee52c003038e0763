// Package client provides the HTTP layer shared by all upstream data
// sources: a JSON GET client with a DNS-cached transport, endpoint URL
// construction, and an optional per-host circuit breaker.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/dnscache"
)

// JSONGetter is the interface consumed by the data sources. It is satisfied
// by both Client and BreakerClient.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, out any) error
}

// Client issues JSON GET requests to upstream APIs.
//
// There is no retry logic: a failed request is reported to the caller as-is
// and the per-item pipeline decides what to do with it.
type Client struct {
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.http.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - DNS-cached dialing with a 5 minute refresh interval
func DefaultClient() *Client {
	return NewClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: sharedTransport(),
		},
		userAgent: "git-pkgs-enrich/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	transportOnce sync.Once
	transport     *http.Transport
)

// sharedTransport returns the process-wide transport. The DNS cache and
// its refresh goroutine are started once and shared by every client, so
// constructing a client is cheap and leaks nothing.
func sharedTransport() *http.Transport {
	transportOnce.Do(func() {
		transport = newCachingTransport()
	})
	return transport
}

// newCachingTransport builds an HTTP transport that resolves hosts through
// a refreshing DNS cache. A batch run hits the same three hosts once per
// package, so cached lookups matter.
func newCachingTransport() *http.Transport {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			for _, ip := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
			}
			return nil, fmt.Errorf("failed to dial any resolved IP")
		},
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// GetJSON issues a GET request and decodes the response body into out.
// Non-2xx responses are returned as *HTTPError with the status code and
// the first KB of the body.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}
