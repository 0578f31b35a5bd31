package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Event kinds used as the "kind" label of EventsTotal.
const (
	EventApp    = "app"
	EventWindow = "window"
	EventIdle   = "idle"
	EventTick   = "tick"
)

var (
	// Event ingestion
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focustrack_events_total",
			Help: "Focus events received from the event source",
		},
		[]string{"kind"},
	)

	EventsDeduplicated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focustrack_events_deduplicated_total",
			Help: "App or window events dropped because the focus target did not change",
		},
	)

	// Session lifecycle
	SessionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focustrack_sessions_opened_total",
			Help: "Usage sessions opened",
		},
	)

	SessionsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focustrack_sessions_closed_total",
			Help: "Usage sessions closed",
		},
	)

	// Store
	StoreWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focustrack_store_write_errors_total",
			Help: "Queued store writes that failed and were dropped",
		},
	)

	StoreQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focustrack_store_queue_depth",
			Help: "Operations waiting in the store queue",
		},
	)
)

func init() {
	prometheus.MustRegister(
		EventsTotal,
		EventsDeduplicated,
		SessionsOpened,
		SessionsClosed,
		StoreWriteErrors,
		StoreQueueDepth,
	)
}

// Server exposes /metrics and /health over HTTP.
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener
}

func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start binds the listener and serves in the background. Bind errors are
// returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting metrics server")
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Shutdown(ctx)
}
