// Package server exposes an editor over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/metrics"
	"github.com/matsen/bjjflow/internal/transcript"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Saver persists a serialized workspace document.
type Saver func(data []byte) error

// Server holds the HTTP interface and the editor it drives.
type Server struct {
	editor      *editor.Editor
	titles      editor.TitleFetcher
	transcripts transcript.Fetcher
	save        Saver
	logger      *slog.Logger

	// saveMu orders snapshot-and-save so a slow save never overwrites a
	// newer document.
	saveMu sync.Mutex

	// hydrateTimeout bounds background title lookups.
	hydrateTimeout time.Duration

	handler    http.Handler
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithTitleFetcher enables reference title hydration.
func WithTitleFetcher(f editor.TitleFetcher) Option {
	return func(s *Server) { s.titles = f }
}

// WithTranscriptFetcher enables building charts from video transcripts.
func WithTranscriptFetcher(f transcript.Fetcher) Option {
	return func(s *Server) { s.transcripts = f }
}

// WithSaver sets the function called with the workspace document after every
// successful mutation.
func WithSaver(fn Saver) Option {
	return func(s *Server) { s.save = fn }
}

// WithLogger sets the logger used for request and status logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds a server for ed listening on addr.
func New(ed *editor.Editor, addr string, opts ...Option) *Server {
	s := &Server{
		editor:         ed,
		logger:         slog.Default(),
		hydrateTimeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	s.registerHandlers(mux)

	// Recovery must be outer-most to catch everything.
	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealthz)
	root.Handle("GET /metrics", promhttp.Handler())
	root.Handle("/", handler)

	s.handler = root
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.recordChartMetrics()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until the server is shut down.
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting up to five seconds for open requests.
func (s *Server) Shutdown() {
	s.logger.Info("shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}
}

// persist saves the workspace and refreshes the chart gauges.
func (s *Server) persist() {
	s.recordChartMetrics()
	if s.save == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	data, err := s.editor.SerializeWorkspace()
	if err != nil {
		s.logger.Error("serializing workspace", "error", err)
		return
	}
	if err := s.save(data); err != nil {
		s.logger.Error("saving workspace", "error", err)
	}
}

func (s *Server) recordChartMetrics() {
	for key, c := range s.editor.Charts() {
		metrics.Nodes.WithLabelValues(key).Set(float64(len(c.Nodes)))
	}
}
