// Package telegram delivers predictit commands from the Telegram Bot API
// using long polling.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/daszybak/predictit_bot/internal/bot"
	"github.com/daszybak/predictit_bot/pkg/hashset"
	"github.com/daszybak/predictit_bot/pkg/httpclient"
)

const (
	DefaultAPIURL      = "https://api.telegram.org"
	DefaultPollTimeout = 30 * time.Second
	DefaultStyle       = "html"

	retryDelay = time.Second
)

type Config struct {
	APIURL       string
	Token        string
	PollTimeout  time.Duration
	AllowedChats []int64
	Style        string
}

// Handler runs one chat line. bot.Dispatcher implements it.
type Handler interface {
	HandleMessage(ctx context.Context, host bot.Host, text string) (bool, error)
}

type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description"`
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Bot polls getUpdates and hands every text message to the Handler. Each
// command runs in its own goroutine.
type Bot struct {
	cfg        Config
	httpClient *http.Client
	handler    Handler
	allowed    hashset.Set[int64]
	logger     *slog.Logger

	offset   int
	inflight sync.WaitGroup
}

// New creates a Bot. Empty config fields take their defaults.
func New(cfg Config, h Handler, logger *slog.Logger) *Bot {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.Style == "" {
		cfg.Style = DefaultStyle
	}
	return &Bot{
		cfg: cfg,
		// Longer than the long-poll timeout so the server answers first.
		httpClient: &http.Client{Timeout: cfg.PollTimeout + 5*time.Second},
		handler:    h,
		allowed:    hashset.New(cfg.AllowedChats...),
		logger:     logger.With("component", "telegram"),
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting", "poll_timeout", b.cfg.PollTimeout, "allowed_chats", len(b.allowed))

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("stopping", "reason", ctx.Err())
			return ctx.Err()
		default:
		}

		if err := b.poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			b.logger.Error("get updates failed", "error", b.redact(err))
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
		}
	}
}

// Stop waits for in-flight commands to finish or ctx to expire.
func (b *Bot) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("couldn't wait for in-flight commands: %w", ctx.Err())
	}
}

func (b *Bot) poll(ctx context.Context) error {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(b.offset))
	q.Set("timeout", strconv.Itoa(int(b.cfg.PollTimeout.Seconds())))

	resp, err := httpclient.GetResource[apiResponse[[]Update]](ctx, b.httpClient, b.method("getUpdates")+"?"+q.Encode(), nil, []int{http.StatusOK})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("telegram: %s", resp.Description)
	}

	for _, u := range resp.Result {
		b.offset = u.UpdateID + 1
		b.dispatch(ctx, u)
	}
	return nil
}

func (b *Bot) dispatch(ctx context.Context, u Update) {
	if u.Message == nil || u.Message.Text == "" {
		return
	}
	chatID := u.Message.Chat.ID
	if !b.allowed.Empty() && !b.allowed.Has(chatID) {
		b.logger.Debug("ignoring chat", "chat_id", chatID)
		return
	}

	host := &chatHost{bot: b, chatID: chatID}
	text := u.Message.Text

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		if _, err := b.handler.HandleMessage(ctx, host, text); err != nil {
			b.logger.Error("handle message", "chat_id", chatID, "error", b.redact(err))
		}
	}()
}

// SendMessage posts text to chatID as HTML.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	req := sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	}
	if b.cfg.Style == DefaultStyle {
		req.ParseMode = "HTML"
	}

	resp, err := httpclient.PostResource[apiResponse[json.RawMessage]](ctx, b.httpClient, b.method("sendMessage"), req, nil, []int{http.StatusOK})
	if err != nil {
		return fmt.Errorf("couldn't send message: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("couldn't send message: telegram: %s", resp.Description)
	}
	return nil
}

func (b *Bot) method(name string) string {
	return strings.TrimRight(b.cfg.APIURL, "/") + "/bot" + b.cfg.Token + "/" + name
}

// redact removes the bot token, which is part of every request URL.
func (b *Bot) redact(err error) error {
	if b.cfg.Token == "" || !strings.Contains(err.Error(), b.cfg.Token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), b.cfg.Token, "<token>"))
}

// chatHost answers into the chat a command came from.
type chatHost struct {
	bot    *Bot
	chatID int64
}

func (h *chatHost) Reply(ctx context.Context, text string) error {
	return h.bot.SendMessage(ctx, h.chatID, text)
}

func (h *chatHost) Config(key string) string {
	switch key {
	case bot.ConfigStyle:
		return h.bot.cfg.Style
	default:
		return ""
	}
}
