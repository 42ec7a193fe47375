// Package metrics provides Prometheus instrumentation for the bot.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command results.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultUsage    = "usage"
	ResultError    = "error"
)

// Upstream services and call outcomes.
const (
	ServiceMarketData = "market_data"
	ServiceShortener  = "shortener"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// CommandsTotal counts handled commands, partitioned by result.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictit_commands_total",
		Help: "Total number of predictit commands handled",
	}, []string{"result"})

	// UpstreamRequestsTotal counts outbound HTTP calls by service and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictit_upstream_requests_total",
		Help: "Total outbound requests to market data and shortener services",
	}, []string{"service", "outcome"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "predictit_upstream_request_duration_seconds",
		Help:    "Outbound request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})

	// ShortenerFallbacks counts replies that used the unshortened URL.
	ShortenerFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predictit_shortener_fallbacks_total",
		Help: "URLs left unshortened because the shortener failed",
	})

	ReplyLines = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "predictit_reply_lines",
		Help:    "Number of lines emitted per successful command",
		Buckets: []float64{1, 2, 3, 4, 5, 6},
	})

	// HTTPRequestsTotal counts requests to the bot's own HTTP server.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictit_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})
)

// ObserveUpstream records one outbound call that started at start.
func ObserveUpstream(service string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	UpstreamRequestsTotal.WithLabelValues(service, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.status)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}
