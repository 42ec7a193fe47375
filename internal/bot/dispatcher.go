// Package bot handles the predictit chat command: it fetches a market,
// builds the reply lines and sends them to the host chat.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/daszybak/predictit_bot/internal/metrics"
	"github.com/daszybak/predictit_bot/internal/predictit"
	"github.com/daszybak/predictit_bot/internal/reply"
	"github.com/daszybak/predictit_bot/internal/shortener"
)

// Host config keys read by the dispatcher.
const (
	ConfigStyle           = "style"
	ConfigShortenerAPIKey = "shortener_api_key"
)

// ErrEmptyResult means a market was fetched but produced no lines.
var ErrEmptyResult = errors.New("market has no contracts")

// Host is the chat the command came from.
type Host interface {
	// Reply sends one message back to the chat.
	Reply(ctx context.Context, text string) error
	// Config returns a host level setting, or "" when unset.
	Config(key string) string
}

type Fetcher interface {
	GetMarket(ctx context.Context, ticker string) (*predictit.Market, error)
}

type Dispatcher struct {
	fetcher   Fetcher
	shortener *shortener.Client
	logger    *slog.Logger

	warnNoKey sync.Once
}

// New creates a dispatcher. shortener may be nil, URLs are then never
// shortened.
func New(f Fetcher, s *shortener.Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		fetcher:   f,
		shortener: s,
		logger:    logger.With("component", "dispatcher"),
	}
}

// HandleMessage runs text if it is a predictit command. The first result
// reports whether text was a command at all.
func (d *Dispatcher) HandleMessage(ctx context.Context, host Host, text string) (bool, error) {
	cmd, ok := ParseCommand(text)
	if !ok {
		return false, nil
	}

	ticker, ok := cmd.Ticker()
	if !ok {
		metrics.CommandsTotal.WithLabelValues(metrics.ResultUsage).Inc()
		return true, host.Reply(ctx, Usage)
	}
	return true, d.Handle(ctx, host, ticker)
}

// Handle answers a request for ticker. Only errors writing to host are
// returned; lookup failures become a "No results found" reply.
func (d *Dispatcher) Handle(ctx context.Context, host Host, ticker string) error {
	ticker = predictit.NormalizeTicker(ticker)
	log := d.logger.With("invocation", uuid.NewString(), "ticker", ticker)

	lines, err := d.lines(ctx, host, ticker, log)
	if err != nil {
		log.Warn("no results", "error", err)
		metrics.CommandsTotal.WithLabelValues(metrics.ResultNotFound).Inc()
		return host.Reply(ctx, notFound(ticker))
	}

	for _, line := range lines {
		if err := host.Reply(ctx, line); err != nil {
			metrics.CommandsTotal.WithLabelValues(metrics.ResultError).Inc()
			return fmt.Errorf("couldn't send reply: %w", err)
		}
	}

	metrics.CommandsTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.ReplyLines.Observe(float64(len(lines)))
	log.Info("replied", "lines", len(lines))
	return nil
}

func (d *Dispatcher) lines(ctx context.Context, host Host, ticker string, log *slog.Logger) ([]string, error) {
	market, err := d.fetcher.GetMarket(ctx, ticker)
	if err != nil {
		return nil, err
	}

	style, ok := reply.StyleByName(host.Config(ConfigStyle))
	if !ok {
		log.Warn("unknown style, using plain", "style", host.Config(ConfigStyle))
	}

	lines := reply.NewBuilder(d.shortenerFor(host), style, log).Build(ctx, market, ticker)
	if len(lines) == 0 {
		return nil, ErrEmptyResult
	}
	return lines, nil
}

// shortenerFor prefers a host level API key over the global one.
func (d *Dispatcher) shortenerFor(host Host) reply.Shortener {
	if d.shortener == nil {
		return nil
	}
	s := d.shortener
	if key := host.Config(ConfigShortenerAPIKey); key != "" {
		s = s.WithAPIKey(key)
	}
	if !s.HasAPIKey() {
		d.warnNoKey.Do(func() {
			d.logger.Warn("shortener API key not configured, URLs will not be shortened")
		})
	}
	return s
}

func notFound(ticker string) string {
	return fmt.Sprintf(`No results found for "%s"`, ticker)
}
