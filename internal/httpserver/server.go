// Package httpserver serves health and Prometheus metrics endpoints while
// the post-restart monitoring window runs. The other phases are one-shot
// and never start it.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout       = 3 * time.Second
	readHeaderTimeout = 3 * time.Second
	writeTimeout      = 5 * time.Second
	idleTimeout       = 60 * time.Second
	maxHeaderBytes    = 1 << 12 // 4kb
)

// readier reports monitor readiness; satisfied by the poller service.
type readier interface {
	Ready() <-chan struct{}
}

type statusResponse struct {
	Phase     string    `json:"phase"`
	StartTime time.Time `json:"startTime"`
	UptimeSec float64   `json:"uptimeSeconds"`
}

// Server is the monitoring-window HTTP server.
type Server struct {
	logger  *slog.Logger
	port    string
	monitor readier
	started time.Time
	server  *http.Server
}

// New creates the monitoring HTTP server.
func New(logger *slog.Logger, port string, monitor readier) *Server {
	return &Server{
		logger:  logger,
		port:    port,
		monitor: monitor,
		started: time.Now(),
	}
}

// Start serves in a goroutine until Shutdown. Listen failures are logged,
// not fatal: losing the health endpoint must not abort a diagnostic run.
func (s *Server) Start(ctx context.Context) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/-/healthz", s.handleHealthz)
	router.Get("/-/readyz", s.handleReadyz)
	router.Get("/-/status", s.handleStatus)
	router.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%s", s.port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}

	go func() {
		s.logger.InfoContext(ctx, "starting monitoring http server", "port", s.port)

		lc := &net.ListenConfig{}

		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			s.logger.ErrorContext(ctx, "monitoring http server failed to listen", "reason", err)

			return
		}

		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.ErrorContext(ctx, "monitoring http server error", "reason", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	select {
	case <-s.monitor.Ready():
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	response := statusResponse{
		Phase:     "post-restart-monitoring",
		StartTime: s.started,
		UptimeSec: time.Since(s.started).Seconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.ErrorContext(r.Context(), "encode status response failed", "reason", err)
	}
}
