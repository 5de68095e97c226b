// Package http exposes health, event status, and metrics endpoints for a
// long-lived analysis session.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tremorlab/seispick/internal/domain"
)

// EventReporter answers status queries about the event under analysis.
type EventReporter interface {
	Event() *domain.Event
}

// Server exposes health, status, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /status, and /metrics
// routes.
func NewServer(addr string, reporter EventReporter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /status", handleStatus(reporter))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type statusResponse struct {
	EventID           string `json:"event_id"`
	Picks             int    `json:"picks"`
	Amplitudes        int    `json:"amplitudes"`
	HasOrigin         bool   `json:"has_origin"`
	LocationMethod    string `json:"location_method,omitempty"`
	StationMagnitudes int    `json:"station_magnitudes"`
	FocalMechanisms   int    `json:"focal_mechanisms"`
}

func handleStatus(reporter EventReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		event := reporter.Event()
		resp := statusResponse{
			EventID:           event.ID,
			Picks:             len(event.Picks),
			Amplitudes:        len(event.Amplitudes),
			HasOrigin:         event.Origin != nil,
			StationMagnitudes: len(event.StationMagnitudes),
			FocalMechanisms:   len(event.FocalMechanisms),
		}
		if event.Origin != nil {
			resp.LocationMethod = event.Origin.Method
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort status response
}
