// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package neonapi

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the Neon v2 API origin.
const DefaultBaseURL = "https://console.neon.tech/api/v2"

// Logger is an optional hook receiving request/response events.
// The Authorization header is redacted before it reaches the hook.
type Logger func(event string, metadata map[string]any)

// Client implements API over the Neon REST endpoints.
type Client struct {
	// baseURL is the API origin without a trailing slash
	baseURL string
	// apiKey is sent as a bearer token on every request
	apiKey     string
	httpClient *http.Client
	userAgent  string
	logger     Logger
}

// Option customizes a Client at construction time.
type Option func(*Client)

func WithBaseURL(u string) Option          { return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") } }
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }
func WithUserAgent(ua string) Option       { return func(c *Client) { c.userAgent = ua } }
func WithLogger(l Logger) Option           { return func(c *Client) { c.logger = l } }

// WithTimeout sets the overall per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 && c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		userAgent: "neonrpc-cli/1.0",
	}
	for _, f := range opts {
		f(c)
	}
	return c
}

var _ API = (*Client)(nil)
