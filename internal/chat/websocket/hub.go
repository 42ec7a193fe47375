// Package websocket serves a line based chat over WebSocket: every text frame
// a client sends is one command line and every reply line comes back as its
// own text frame.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daszybak/predictit_bot/internal/bot"
)

const (
	DefaultCloseTimeout = 5 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	PongWait            = 60 * time.Second
	PingInterval        = 50 * time.Second
	MaxMessageSize      = 1024
)

// Handler runs one chat line. bot.Dispatcher implements it.
type Handler interface {
	HandleMessage(ctx context.Context, host bot.Host, text string) (bool, error)
}

type Hub struct {
	handler  Handler
	style    string
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// NewHub creates a hub whose replies use style ("plain", "irc" or "html").
func NewHub(h Handler, style string, logger *slog.Logger) *Hub {
	return &Hub{
		handler: h,
		style:   style,
		logger:  logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		conns: make(map[*conn]struct{}),
	}
}

// ServeHTTP upgrades the request and serves commands until the client goes
// away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", "error", err)
		return
	}

	c := &conn{
		ws:       ws,
		hub:      h,
		stopPing: make(chan struct{}),
		logger:   h.logger.With("remote", r.RemoteAddr),
	}
	h.register(c)
	defer h.unregister(c)

	go c.pingLoop()
	c.readLoop(r.Context())
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close sends a close frame to every client and drops the connections.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	conns := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.close(ctx)
	}
	return nil
}

func (h *Hub) register(c *conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	c.logger.Info("client connected", "total", total)
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()
	if ok {
		close(c.stopPing)
		c.ws.Close()
		c.logger.Info("client disconnected")
	}
}

// conn is one client. It is the bot.Host for commands it sends.
type conn struct {
	ws       *websocket.Conn
	hub      *Hub
	stopPing chan struct{}
	logger   *slog.Logger

	writeMu sync.Mutex
}

func (c *conn) Reply(ctx context.Context, text string) error {
	return c.write(ctx, websocket.TextMessage, []byte(text))
}

func (c *conn) Config(key string) string {
	switch key {
	case bot.ConfigStyle:
		return c.hub.style
	default:
		return ""
	}
}

func (c *conn) readLoop(ctx context.Context) {
	c.ws.SetReadLimit(MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		msgType, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		text := strings.TrimSpace(string(msg))
		handled, err := c.hub.handler.HandleMessage(ctx, c, text)
		if err != nil {
			c.logger.Error("handle message", "error", err)
			return
		}
		if !handled {
			if err := c.Reply(ctx, "Unknown command. Usage: "+bot.Usage); err != nil {
				c.logger.Error("reply failed", "error", err)
				return
			}
		}
	}
}

func (c *conn) pingLoop() {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopPing:
			return
		case <-ticker.C:
			if err := c.write(context.Background(), websocket.PingMessage, nil); err != nil {
				c.logger.Warn("failed to send ping", "error", err)
				return
			}
		}
	}
}

func (c *conn) write(ctx context.Context, msgType int, data []byte) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultWriteTimeout)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(deadline)
	return c.ws.WriteMessage(msgType, data)
}

func (c *conn) close(ctx context.Context) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultCloseTimeout)
	}

	c.writeMu.Lock()
	err := c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		deadline,
	)
	c.writeMu.Unlock()
	if err != nil {
		c.logger.Warn("failed to send close message", "error", err)
	}
	c.hub.unregister(c)
}
