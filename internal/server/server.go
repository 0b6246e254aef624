// Package server exposes the card store over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45/evaluate"
	"github.com/sky-flux/fsrs45/internal/config"
	"github.com/sky-flux/fsrs45/internal/store"
)

// Options configures a Server.
type Options struct {
	Version     string
	EvalWorkers int
}

// Server is the fsrs45 HTTP API server.
type Server struct {
	store     *store.Store
	log       *zap.Logger
	evaluator *evaluate.Evaluator
	router    chi.Router
	version   string
	started   time.Time
	clock     func() time.Time
}

// New creates a Server backed by st. A nil logger disables logging.
func New(st *store.Store, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:     st,
		log:       logger,
		evaluator: evaluate.New(evaluate.Config{Workers: opts.EvalWorkers}),
		version:   opts.Version,
		started:   time.Now(),
		clock:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", s.handleListCards)
			r.Post("/", s.handleAddCard)
			r.Route("/{cardID}", func(r chi.Router) {
				r.Get("/", s.handleGetCard)
				r.Delete("/", s.handleDeleteCard)
				r.Get("/reviews", s.handleListReviews)
				r.Post("/reviews", s.handleReview)
				r.Get("/preview", s.handlePreview)
				r.Post("/reschedule", s.handleReschedule)
			})
		})

		r.Post("/reset", s.handleReset)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Get("/evaluate", s.handleEvaluate)
	})

	s.router = r
}

// requestLogger logs one line per request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.HTTPConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", cfg.Addr, err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg config.HTTPConfig) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("serving", zap.String("addr", ln.Addr().String()))
		errc <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
