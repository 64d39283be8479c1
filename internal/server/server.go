// Package server exposes the benchmark harness over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/pcrypt/internal/bench"
	"github.com/idelchi/pcrypt/internal/metrics"
)

// DefaultMaxSizeMB bounds the data files the API generates and loads.
const DefaultMaxSizeMB = 1024

// Server routes API requests to the benchmark runner and result store.
type Server struct {
	Runner  *bench.Runner
	Store   *bench.Store
	Metrics *metrics.Metrics
	Logger  *logrus.Logger

	// DataDir holds the generated sample_<N>MB.bin files.
	DataDir string
	// MaxSizeMB caps size_mb in requests; zero means DefaultMaxSizeMB.
	MaxSizeMB int
	// Threads is the worker sweep of /run_thread_sweep; nil means bench.DefaultThreads.
	Threads []int
}

// Handler returns the router with logging and metrics middleware, wrapped in panic recovery.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(loggingMiddleware(s.Logger, s.Metrics))

	s.RegisterRoutes(router)

	return recoveryMiddleware(s.Logger)(router)
}

// RegisterRoutes registers the API routes on r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/generate/{size_mb}", s.handleGenerate).Methods(http.MethodGet)
	r.HandleFunc("/run_one", s.handleRunOne).Methods(http.MethodPost)
	r.HandleFunc("/run_thread_sweep", s.handleThreadSweep).Methods(http.MethodPost)
	r.HandleFunc("/benchmarks", s.handleBenchmarks).Methods(http.MethodGet)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %q: %w", addr, err)
	}

	return s.Serve(ctx, listener, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)

	go func() {
		s.Logger.WithField("addr", listener.Addr().String()).Info("starting HTTP server")

		errs <- server.Serve(listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	s.Logger.Info("server stopped gracefully")

	return nil
}

func (s *Server) maxSize() int {
	if s.MaxSizeMB > 0 {
		return s.MaxSizeMB
	}

	return DefaultMaxSizeMB
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}
