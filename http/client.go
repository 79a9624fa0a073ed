package http

import (
	"net/http"
	"net/url"
	"time"

	"github.com/wesleyorama2/bonkers/pkg/uri"
)

// Client holds a base API URL and the *http.Client shared by every Endpoint
// it creates. Client is immutable after NewClient and safe for concurrent
// use; the Endpoints it creates are not.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    []header
}

type header struct {
	name  string
	value string
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for the API rooted at baseURL. baseURL must be
// an absolute URL.
//
// Example:
//
//	client, err := http.NewClient("https://api.example.com/",
//	    http.WithTimeout(10*time.Second),
//	    http.WithHeader("X-Api-Key", key),
//	)
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := uri.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	client := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, option := range options {
		option(client)
	}

	return client, nil
}

// WithTimeout sets the timeout of the shared *http.Client.
// The default timeout is 30 seconds. After WithHTTPClient this modifies the
// caller's client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the shared *http.Client. The client is used as
// given, so later WithTimeout or WithTransport options modify it and earlier
// ones are discarded. A nil httpClient keeps the default client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient == nil {
			return
		}
		c.httpClient = httpClient
	}
}

// WithTransport sets the RoundTripper of the shared *http.Client. After
// WithHTTPClient this modifies the caller's client.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = transport
	}
}

// WithHeader adds a default header to every request sent by endpoints
// derived from this client. Headers set on an endpoint override these
// defaults, matched case-insensitively. A content header default such as
// Content-Type replaces the value a body sets. A later WithHeader for the
// same name replaces the earlier value.
func WithHeader(name, value string) ClientOption {
	return func(c *Client) {
		for i := range c.headers {
			if c.headers[i].name == name {
				c.headers[i].value = value
				return
			}
		}
		c.headers = append(c.headers, header{name: name, value: value})
	}
}

// BaseURL returns a copy of the client's base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// HTTPClient returns the shared *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// CreateEndpoint returns an endpoint for path resolved against the base URL.
// An invalid path is recorded on the endpoint and returned by its terminal
// calls.
func (c *Client) CreateEndpoint(path string) *Endpoint {
	u, err := uri.Combine(c.baseURL, path)
	if err != nil {
		e := newEndpoint(c.httpClient, c.headers, c.BaseURL())
		e.err = err
		return e
	}
	return newEndpoint(c.httpClient, c.headers, u)
}
