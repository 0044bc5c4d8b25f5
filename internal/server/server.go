// Package server exposes the HTTP API: multipart job submission, status and
// progress reporting, cancellation, download of finished videos, and the
// font catalog. Job execution itself happens on per-job goroutines owned by
// the pipeline orchestrator.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"slidecast/internal/api"
	"slidecast/internal/config"
	"slidecast/internal/history"
	"slidecast/internal/jobs"
	"slidecast/internal/logging"
	"slidecast/internal/pipeline"
)

// Runner executes one submitted job to a terminal state.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request)
}

// Server is the HTTP front end. History may be nil when the archive is
// disabled.
type Server struct {
	cfg      *config.Config
	store    *jobs.Store
	registry *jobs.CancelRegistry
	runner   Runner
	archive  *history.Archive
	logger   *slog.Logger

	mux      *http.ServeMux
	server   *http.Server
	listener net.Listener

	// baseCtx is the lifetime of spawned job goroutines; it outlives the
	// request that submitted the job.
	baseCtx context.Context

	// progressInterval is the SSE emission period.
	progressInterval time.Duration
}

// New wires the HTTP server. It does not start listening.
func New(cfg *config.Config, store *jobs.Store, registry *jobs.CancelRegistry, runner Runner, archive *history.Archive, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:              cfg,
		store:            store,
		registry:         registry,
		runner:           runner,
		archive:          archive,
		logger:           logging.NewComponentLogger(logger, "api-server"),
		mux:              http.NewServeMux(),
		baseCtx:          context.Background(),
		progressInterval: 500 * time.Millisecond,
	}

	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/status/", s.handleStatus)
	s.mux.HandleFunc("/api/progress/", s.handleProgress)
	s.mux.HandleFunc("/api/cancel/", s.handleCancel)
	s.mux.HandleFunc("/api/download/", s.handleDownload)
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/fonts", s.handleFonts)

	s.server = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		// Read and write timeouts stay unset: uploads can be large and the
		// progress stream is long-lived.
	}
	return s
}

// Handler returns the route table, for serving through an external listener.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins listening on the configured bind address. Shutdown begins
// when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return fmt.Errorf("api bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.baseCtx = ctx

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, allowing in-flight requests 5 seconds to
// drain. Running jobs are not interrupted here; the daemon cancels them
// through its own context.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

// pathID extracts the trailing job id from a route like /api/status/{id}.
func pathID(r *http.Request, prefix string) string {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
