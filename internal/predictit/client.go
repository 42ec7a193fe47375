// Package predictit fetches market data from PredictIt's ticker endpoint.
package predictit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/daszybak/predictit_bot/internal/metrics"
	"github.com/daszybak/predictit_bot/pkg/httpclient"
)

const (
	// DefaultURLTemplate is the public ticker endpoint. {ticker} is replaced
	// with the requested ticker symbol.
	DefaultURLTemplate = "https://www.predictit.org/api/marketdata/ticker/{ticker}"
	TickerPlaceholder  = "{ticker}"
)

// ErrNotFound is matched by every FetchError. Callers only need to know that
// no market could be produced for the ticker.
var ErrNotFound = errors.New("market not found")

// FetchError reports why a market could not be retrieved.
type FetchError struct {
	Ticker string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("couldn't fetch market %s: %v", e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrNotFound, e.Err}
}

// Market is the top level document returned for a ticker. Contracts keep the
// order the API returned them in.
type Market struct {
	ID           int         `json:"ID"`
	Name         string      `json:"Name"`
	ShortName    string      `json:"ShortName"`
	TickerSymbol string      `json:"TickerSymbol"`
	URL          string      `json:"URL"`
	Status       string      `json:"Status"`
	Contracts    []*Contract `json:"Contracts"`
}

type Contract struct {
	ID             int                 `json:"ID"`
	Name           string              `json:"Name"`
	ShortName      string              `json:"ShortName"`
	TickerSymbol   string              `json:"TickerSymbol"`
	URL            string              `json:"URL"`
	Status         string              `json:"Status"`
	LastTradePrice decimal.Decimal     `json:"LastTradePrice"`
	LastClosePrice decimal.NullDecimal `json:"LastClosePrice"`
}

type Client struct {
	httpClient  *http.Client
	urlTemplate string
	userAgent   string
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for urlTemplate. An empty template selects
// DefaultURLTemplate.
func New(urlTemplate string, opts ...ClientOption) *Client {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	c := &Client{
		httpClient:  &http.Client{},
		urlTemplate: urlTemplate,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "predictit")
	return c
}

// URL returns the endpoint for ticker.
func (c *Client) URL(ticker string) string {
	return strings.ReplaceAll(c.urlTemplate, TickerPlaceholder, url.PathEscape(ticker))
}

// GetMarket fetches the market document for ticker. Every failure, including
// an empty body, is returned as a *FetchError.
func (c *Client) GetMarket(ctx context.Context, ticker string) (*Market, error) {
	headers := http.Header{}
	headers.Set("Accept", "application/json")
	if c.userAgent != "" {
		headers.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	market, err := httpclient.GetResource[*Market](ctx, c.httpClient, c.URL(ticker), headers, []int{http.StatusOK})
	if err == nil && market == nil {
		err = errors.New("empty response")
	}
	metrics.ObserveUpstream(metrics.ServiceMarketData, start, err)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Err: err}
	}

	c.logger.Debug("fetched market", "ticker", ticker, "contracts", len(market.Contracts))
	return market, nil
}
