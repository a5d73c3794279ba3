// Package server exposes the site over HTTP: the home page with its
// streamed metrics grid, the blog, a JSON snapshot and operational routes.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vukan322/devfolio/internal/content"
	"github.com/vukan322/devfolio/internal/core"
	"github.com/vukan322/devfolio/internal/markup"
	"github.com/vukan322/devfolio/internal/metrics"
)

// SnapshotSource produces the metrics for one render pass.
type SnapshotSource interface {
	Snapshot(ctx context.Context) core.Snapshot
	HostName() string
}

// PostStore is the read side of the post collection.
type PostStore interface {
	All() []*content.Post
	BySlug(slug string) (*content.Post, error)
}

// ViewCounter records a single post view and returns the new count.
type ViewCounter interface {
	Increment(ctx context.Context, slug string) (int, error)
}

type Options struct {
	Addr       string
	SiteTitle  string
	ProfileURL string

	Metrics  SnapshotSource
	Posts    PostStore
	Views    ViewCounter
	Markup   markup.Registry
	Recorder metrics.Recorder
	Logger   *slog.Logger

	// MetricsHandler serves /metrics. The route is not mounted when nil.
	MetricsHandler http.Handler
	// SnapshotTimeout bounds one aggregator pass per request.
	SnapshotTimeout time.Duration
}

type Server struct {
	opts   Options
	logger *slog.Logger
	router *chi.Mux
	server *http.Server
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Markup == nil {
		opts.Markup = markup.DefaultRegistry()
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger,
		router: chi.NewRouter(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/", s.handleHome)
	s.router.Get("/fragments/metrics", s.handleMetricsFragment)
	s.router.Get("/api/metrics", s.handleMetricsJSON)
	s.router.Get("/blog", s.handleBlogIndex)
	s.router.Get("/blog/{slug}", s.handlePost)
	s.router.Get("/healthz", s.handleHealth)

	if s.opts.MetricsHandler != nil {
		s.router.Method(http.MethodGet, "/metrics", s.opts.MetricsHandler)
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, content.ErrNotFound)
	})
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
