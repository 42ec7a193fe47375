// Package server exposes health, metrics and the WebSocket chat over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/daszybak/predictit_bot/internal/chat/websocket"
	"github.com/daszybak/predictit_bot/internal/metrics"
)

type Server struct {
	srv    *http.Server
	hub    *websocket.Hub
	logger *slog.Logger
}

// New builds the router. hub may be nil, /ws is then not mounted.
func New(addr string, hub *websocket.Hub, logger *slog.Logger) *Server {
	s := &Server{
		hub:    hub,
		logger: logger.With("component", "http"),
	}
	s.srv = &http.Server{
		Addr:        addr,
		Handler:     s.routes(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"predictit-bot"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	if s.hub != nil {
		r.Get("/ws", s.hub.ServeHTTP)
	}
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("couldn't serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("stopping", "reason", ctx.Err())
		return ctx.Err()
	}
}

// Stop closes WebSocket clients and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close(ctx)
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("couldn't shut down http server: %w", err)
	}
	return nil
}
