package main

import (
	"context"
	"fmt"
	"io"

	"github.com/daszybak/predictit_bot/internal/bot"
)

// consoleHost prints replies, one per line.
type consoleHost struct {
	out   io.Writer
	style string
}

func (h *consoleHost) Reply(_ context.Context, text string) error {
	_, err := fmt.Fprintln(h.out, text)
	return err
}

func (h *consoleHost) Config(key string) string {
	if key == bot.ConfigStyle {
		return h.style
	}
	return ""
}

func lookup(ctx context.Context, d *bot.Dispatcher, ticker, style string, out io.Writer) error {
	return d.Handle(ctx, &consoleHost{out: out, style: style}, ticker)
}
