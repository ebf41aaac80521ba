// Package preview serves the most recent compile over HTTP so designers can
// check their tables without running the game.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"

	"csvpack/internal/compiler"
	"csvpack/internal/config"
	"csvpack/internal/middleware"
)

// Compiler produces a fresh compile result.
type Compiler interface {
	Run(ctx context.Context) (*compiler.Result, error)
}

// Server holds the current snapshot and the HTTP routes over it.
type Server struct {
	compiler Compiler
	cfg      config.PreviewConfig
	logger   *slog.Logger
	limiter  *middleware.RateLimiter

	mu       sync.RWMutex
	snap     *compiler.Snapshot
	builtAt  time.Time
	lastErr  error
	failures int

	cron *cron.Cron
}

// New creates a Server. Call Refresh before serving to load the first
// snapshot.
func New(c Compiler, cfg config.PreviewConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		compiler: c,
		cfg:      cfg,
		logger:   logger,
		limiter: middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}),
	}
}

// Refresh recompiles. On failure the previous snapshot stays in place and
// the error is reported by /healthz.
func (s *Server) Refresh(ctx context.Context) error {
	res, err := s.compiler.Run(ctx)
	var snap *compiler.Snapshot
	if err == nil {
		snap, err = res.Snapshot()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		s.failures++
		s.logger.Warn("preview refresh failed; keeping previous snapshot", "error", err, "failures", s.failures)
		return err
	}
	s.snap = snap
	s.builtAt = time.Now()
	s.lastErr = nil
	s.failures = 0
	s.logger.Info("preview refreshed", "run_id", res.RunID, "tables", len(snap.Tables))
	return nil
}

// current returns the snapshot being served and the last refresh error.
func (s *Server) current() (*compiler.Snapshot, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.builtAt, s.lastErr
}

// Start schedules recompiles on cfg.Refresh, when set, and an hourly sweep
// of idle rate-limit buckets.
func (s *Server) Start(ctx context.Context) error {
	s.cron = cron.New()
	if s.cfg.Refresh != "" {
		if _, err := s.cron.AddFunc(s.cfg.Refresh, func() {
			_ = s.Refresh(ctx)
		}); err != nil {
			return fmt.Errorf("schedule refresh %q: %w", s.cfg.Refresh, err)
		}
	}
	if _, err := s.cron.AddFunc("@hourly", func() {
		s.logger.Debug("rate limiter swept", "clients", s.limiter.Sweep())
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("preview scheduler started", "refresh", s.cfg.Refresh)
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Server) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("preview scheduler stopped")
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(s.logger))
	r.Use(s.limiter.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Get("/", s.index)
	r.Get("/tables/{name}", s.table)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.apiTables)
		r.Get("/tables/{name}", s.apiTable)
		r.Get("/strings/{key}", s.apiString)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown preview server: %w", err)
		}
		return nil
	}
}
