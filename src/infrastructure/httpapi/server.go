// Package httpapi serves the read-only operator surface: current
// rankings, the simulated portfolio, the execution log, health, and
// Prometheus metrics. It never mutates pipeline state.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/pipeline"
	"github.com/MohammedBenaboud/Alphaseeker/src/application/tune"
	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
)

// StatusView is one published frame of system state. The host loop
// publishes a fresh copy after every cycle; handlers only ever read.
type StatusView struct {
	Timestamp  time.Time                    `json:"timestamp"`
	CycleCount int64                        `json:"cycle_count"`
	Assets     []pipeline.EnrichedAsset     `json:"assets"`
	Portfolio  domain.Portfolio             `json:"portfolio"`
	Logs       []pipeline.ExecutionLogEntry `json:"logs"`
	Metric     tune.SystemMetric            `json:"metric"`
	Alerts     []tune.SystemAlert           `json:"alerts"`
	Config     tune.TradingConfig           `json:"config"`
}

// Server is the read-only HTTP server.
type Server struct {
	server  *http.Server
	metrics *MetricsRegistry

	mu   sync.RWMutex
	view StatusView
}

// Config holds server settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewServer builds the server and its routes.
func NewServer(cfg Config, metrics *MetricsRegistry) *Server {
	s := &Server{metrics: metrics}

	// Routes are registered directly on the router; a subrouter would
	// swallow mux's method-mismatch handling and turn 405s into 404s.
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/positions", s.handlePositions).Methods(http.MethodGet)
	router.HandleFunc("/logs", s.handleLogs).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Publish swaps in a new frame of state.
func (s *Server) Publish(view StatusView) {
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
}

func (s *Server) snapshot() StatusView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// ListenAndServe runs until the context is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.snapshot())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	view := s.snapshot()
	writeJSON(w, map[string]interface{}{
		"timestamp": view.Timestamp,
		"positions": view.Portfolio,
		"exposure":  view.Portfolio.Exposure(),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	view := s.snapshot()
	writeJSON(w, map[string]interface{}{
		"timestamp": view.Timestamp,
		"logs":      view.Logs,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	view := s.snapshot()
	status := "ok"
	if !view.Timestamp.IsZero() && time.Since(view.Timestamp) > 5*time.Minute {
		status = "stale"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, map[string]interface{}{
		"status":      status,
		"last_cycle":  view.Timestamp,
		"cycle_count": view.CycleCount,
		"metric":      view.Metric,
		"alerts":      view.Alerts,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).Msg("HTTP request")
	})
}
