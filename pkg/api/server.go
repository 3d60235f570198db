package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ServerConfig holds server configuration. RequestTimeout and
// ShutdownTimeout are sized for beam search, not fixed constants: a wide
// beam width or large search radius (pkg/config.Search) can make a
// single match take tens of seconds, unlike a shortest-path query, which
// resolves near-instantly. DefaultConfigFromSearch derives both from the
// search tuning actually loaded for the process.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxConcurrent   int
	CORSOrigin      string
}

// DefaultConfig returns sensible defaults for a process with no loaded
// search tuning (e.g. health/stats-only use). cmd/serve prefers
// DefaultConfigFromSearch once it has loaded a config.Search.
func DefaultConfig(addr string) ServerConfig {
	return DefaultConfigFromSearch(addr, 30*time.Second)
}

// DefaultConfigFromSearch returns defaults with RequestTimeout (and the
// read/write/shutdown timeouts derived from it) sized to searchTimeout,
// the longest a single beam search configured by pkg/config.Search is
// expected to run. ShutdownTimeout matches RequestTimeout so an in-flight
// search gets the same grace period to finish as it was given to start.
func DefaultConfigFromSearch(addr string, searchTimeout time.Duration) ServerConfig {
	return ServerConfig{
		Addr:            addr,
		ReadTimeout:     searchTimeout,
		WriteTimeout:    searchTimeout,
		RequestTimeout:  searchTimeout,
		ShutdownTimeout: searchTimeout,
		MaxConcurrent:   runtime.NumCPU() * 2,
		CORSOrigin:      "",
	}
}

// NewServer creates the cmd/serve HTTP server: POST /api/v1/route plus
// health/stats endpoints, each wrapped in withMiddleware. Every request
// is logged through log.
func NewServer(cfg ServerConfig, handlers *Handlers, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()

	// Concurrency limiter.
	sem := make(chan struct{}, cfg.MaxConcurrent)

	// Routes, registered by path: the module's go 1.21 directive predates
	// method-qualified ServeMux patterns, so the method is checked here.
	handle := func(method, path string, h http.HandlerFunc) {
		wrapped := withMiddleware(h, sem, cfg, log)
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
				return
			}
			wrapped(w, r)
		})
	}
	handle(http.MethodPost, "/api/v1/route", handlers.HandleRoute)
	handle(http.MethodGet, "/api/v1/health", handlers.HandleHealth)
	handle(http.MethodGet, "/api/v1/stats", handlers.HandleStats)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
// shutdownTimeout bounds how long in-flight beam searches get to finish
// before the process tears the listener down.
func ListenAndServe(srv *http.Server, shutdownTimeout time.Duration, log *zap.Logger) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// withMiddleware wraps a handler with logging, recovery, security headers,
// and concurrency limiting.
func withMiddleware(handler http.HandlerFunc, sem chan struct{}, cfg ServerConfig, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Security headers.
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		// CORS.
		if cfg.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
		}

		// Concurrency limiter.
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
			return
		}

		// Recovery.
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic in handler", zap.Any("recover", rec))
				http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
			}
		}()

		// Request timeout, sized for beam search rather than a fixed
		// constant (see ServerConfig).
		ctx, cancel := context.WithTimeout(r.Context(), cfg.RequestTimeout)
		defer cancel()

		start := time.Now()
		handler(w, r.WithContext(ctx))
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start).Round(time.Microsecond)),
		)
	}
}
