// Package reply turns a PredictIt market document into chat lines.
package reply

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/daszybak/predictit_bot/internal/metrics"
	"github.com/daszybak/predictit_bot/internal/predictit"
)

// MaxContracts is the number of contracts listed for a multi-contract market.
const MaxContracts = 5

type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

type Builder struct {
	shortener Shortener
	style     Style
	logger    *slog.Logger
}

// NewBuilder creates a Builder. A nil shortener leaves URLs untouched and a
// nil style renders plain text.
func NewBuilder(s Shortener, style Style, logger *slog.Logger) *Builder {
	if style == nil {
		style = Plain{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		shortener: s,
		style:     style,
		logger:    logger.With("component", "reply"),
	}
}

// Build returns the reply lines for m in display order. ticker must already
// be normalized. A market without contracts yields no lines.
func (b *Builder) Build(ctx context.Context, m *predictit.Market, ticker string) []string {
	if m == nil {
		return nil
	}
	contracts := make([]*predictit.Contract, 0, len(m.Contracts))
	for _, c := range m.Contracts {
		if c != nil {
			contracts = append(contracts, c)
		}
	}
	if len(contracts) == 0 {
		return nil
	}

	padding := namePadding(contracts)
	printURL := b.resolveURL(ctx, m.URL)

	if len(contracts) == 1 {
		name, trade, delta := FormatContract(b.style, contracts[0])
		return []string{fmt.Sprintf("%s | %s | %s (%s)",
			b.style.Bold(name), b.style.Text(printURL), trade, delta)}
	}

	lines := []string{fmt.Sprintf("%s | %s", b.style.Bold(m.Name), b.style.Text(printURL))}

	// The full-set padding is discarded once the list is truncated.
	shown := contracts
	if len(contracts) > MaxContracts {
		shown = contracts[:MaxContracts]
		padding = namePadding(shown)
	}

	depth := predictit.Segments(ticker)
	for _, c := range shown {
		name, trade, delta := FormatContract(b.style, c)

		if depth == predictit.Segments(c.TickerSymbol) && ticker == c.TickerSymbol {
			contractURL := b.resolveURL(ctx, c.URL)
			b.logger.Debug("requested contract", "ticker", c.TickerSymbol, "url", contractURL)
			lines = append(lines, fmt.Sprintf("%s | %s (%s)", b.style.Text(name), trade, delta))
			continue
		}

		lines = append(lines, fmt.Sprintf("%s | %s (%s)",
			b.style.Text(fmt.Sprintf("%-*s", padding, name)), trade, delta))
	}

	return lines
}

// resolveURL shortens u, falling back to u itself on any failure.
func (b *Builder) resolveURL(ctx context.Context, u string) string {
	if b.shortener == nil || u == "" {
		return u
	}
	short, err := b.shortener.Shorten(ctx, u)
	if err != nil {
		metrics.ShortenerFallbacks.Inc()
		b.logger.Debug("using unshortened url", "url", u, "error", err)
		return u
	}
	return short
}

// namePadding is the widest contract name in runes.
func namePadding(contracts []*predictit.Contract) int {
	padding := 0
	for _, c := range contracts {
		padding = max(padding, utf8.RuneCountInString(c.Name))
	}
	return padding
}
