// Package shortener is a client for a goo.gl style URL shortening API.
package shortener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/daszybak/predictit_bot/internal/metrics"
	"github.com/daszybak/predictit_bot/pkg/httpclient"
)

const DefaultEndpoint = "https://www.googleapis.com/urlshortener/v1/url"

// ErrNoAPIKey is returned when the client has no credential to call the API.
var ErrNoAPIKey = errors.New("no shortener API key configured")

// ShortenError wraps any failure to shorten URL.
type ShortenError struct {
	URL string
	Err error
}

func (e *ShortenError) Error() string {
	return fmt.Sprintf("couldn't shorten %s: %v", e.URL, e.Err)
}

func (e *ShortenError) Unwrap() error {
	return e.Err
}

type request struct {
	LongURL string `json:"longUrl"`
}

type response struct {
	ID      string `json:"id"`
	LongURL string `json:"longUrl"`
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a shortener client. An empty endpoint selects DefaultEndpoint.
// An empty apiKey is allowed, Shorten then always fails with ErrNoAPIKey.
func New(endpoint, apiKey string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		apiKey:     apiKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "shortener")
	return c
}

// HasAPIKey reports whether the client can call the API at all.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// WithAPIKey returns a copy of c that authenticates with apiKey. The HTTP
// client is shared.
func (c *Client) WithAPIKey(apiKey string) *Client {
	cp := *c
	cp.apiKey = apiKey
	return &cp
}

// Shorten submits longURL and returns the shortened form. Every failure is a
// *ShortenError; callers decide whether to fall back to longURL.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	if c.apiKey == "" {
		return "", &ShortenError{URL: longURL, Err: ErrNoAPIKey}
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", &ShortenError{URL: longURL, Err: fmt.Errorf("couldn't parse endpoint: %w", err)}
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	start := time.Now()
	resp, err := httpclient.PostResource[response](ctx, c.httpClient, u.String(), request{LongURL: longURL}, nil, []int{http.StatusOK})
	if err == nil && resp.ID == "" {
		err = errors.New("response has no id")
	}
	metrics.ObserveUpstream(metrics.ServiceShortener, start, err)
	if err != nil {
		return "", &ShortenError{URL: longURL, Err: err}
	}

	c.logger.Debug("shortened url", "long", longURL, "short", resp.ID)
	return resp.ID, nil
}
