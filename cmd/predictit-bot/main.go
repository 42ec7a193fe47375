package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/daszybak/predictit_bot/internal/bot"
	"github.com/daszybak/predictit_bot/internal/chat"
	"github.com/daszybak/predictit_bot/internal/chat/telegram"
	"github.com/daszybak/predictit_bot/internal/chat/websocket"
	"github.com/daszybak/predictit_bot/internal/predictit"
	"github.com/daszybak/predictit_bot/internal/server"
	"github.com/daszybak/predictit_bot/internal/shortener"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "configs/predictit-bot/config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to .env file")
	ticker := flag.String("ticker", "", "look up one ticker, print the reply and exit")
	style := flag.String("style", "plain", "reply style for -ticker: plain, irc or html")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil {
		log.Printf("Couldn't load %s: %v", *envPath, err)
	}

	cfg, err := readConfig(configPath)
	if err != nil {
		if *ticker == "" || !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Couldn't read config: %v", err)
		}
		cfg = defaultConfig()
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher := predictit.New(cfg.PredictIt.URLTemplate,
		predictit.WithTimeout(cfg.PredictIt.Timeout.Duration()),
		predictit.WithUserAgent(cfg.PredictIt.UserAgent),
		predictit.WithLogger(logger),
	)
	urlShortener := shortener.New(cfg.Shortener.Endpoint, cfg.Shortener.APIKey.Value(),
		shortener.WithTimeout(cfg.Shortener.Timeout.Duration()),
		shortener.WithLogger(logger),
	)
	dispatcher := bot.New(fetcher, urlShortener, logger)

	if *ticker != "" {
		if err := lookup(ctx, dispatcher, *ticker, *style, os.Stdout); err != nil {
			log.Fatalf("Couldn't write reply: %v", err)
		}
		return
	}

	var hub *websocket.Hub
	if cfg.WebSocket.Enabled {
		hub = websocket.NewHub(dispatcher, cfg.WebSocket.Style, logger)
	}
	transports := []chat.Transport{server.New(cfg.HTTP.Addr, hub, logger)}

	if cfg.Telegram.Enabled {
		transports = append(transports, telegram.New(telegram.Config{
			APIURL:       cfg.Telegram.APIURL,
			Token:        cfg.Telegram.Token.Value(),
			PollTimeout:  cfg.Telegram.PollTimeout.Duration(),
			AllowedChats: cfg.Telegram.AllowedChats,
		}, dispatcher, logger))
	}

	if err := run(ctx, transports, logger); err != nil {
		log.Fatalf("Stopped with error: %v", err)
	}
}

// run starts every transport and stops them all once ctx is cancelled or
// one of them fails.
func run(ctx context.Context, transports []chat.Transport, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(transports))
	for _, t := range transports {
		t := t
		go func() {
			err := t.Start(ctx)
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			errCh <- err
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		cancel()
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	for _, t := range transports {
		if err := t.Stop(stopCtx); err != nil {
			logger.Error("stop transport", "error", err)
		}
	}

	logger.Info("predictit-bot stopped")
	return runErr
}
