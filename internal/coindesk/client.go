package coindesk

import (
	"net/http"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=coindesk_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the coindesk price-quote API.
type Client struct {
	// baseURL is the full URL of the current-price endpoint.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// ClientOption is a configuration option for the coindesk client.
type ClientOption func(*Client)

// WithBaseURL sets the endpoint URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithUserAgent overrides the client identifier sent with each request.
// The upstream service bans the default identifiers of common HTTP
// libraries, so this must never be left at the net/http default.
func WithUserAgent(agent string) ClientOption {
	return func(c *Client) {
		c.header.Set("User-Agent", agent)
	}
}

// NewClient creates a new coindesk API client.
func NewClient(options ...ClientOption) *Client {
	var client = &Client{
		baseURL:    "https://api.coindesk.com/v1/bpi/currentprice.json",
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	client.header.Set("User-Agent", "btctracker/1.0")
	for _, option := range options {
		option(client)
	}
	return client
}
