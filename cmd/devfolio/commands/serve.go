package commands

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/vukan322/devfolio/internal/aggregate"
	"github.com/vukan322/devfolio/internal/content"
	"github.com/vukan322/devfolio/internal/logfields"
	"github.com/vukan322/devfolio/internal/markup"
	"github.com/vukan322/devfolio/internal/metrics"
	"github.com/vukan322/devfolio/internal/server"
)

type ServeCmd struct {
	Addr  string `help:"Listen address (overrides server.addr)"`
	Watch bool   `help:"Reload posts when the content directory changes"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	posts, err := loadPosts(cfg.Content.Dir, g.Logger)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	w, err := wire(cfg, root.Demo, posts, g.Logger, rec)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			g.Logger.Warn("Closing providers failed", logfields.Error(err))
		}
	}()

	if s.Watch || cfg.Content.Watch {
		go func() {
			if err := content.Watch(ctx, cfg.Content.Dir, posts, g.Logger); err != nil {
				g.Logger.Error("Content watcher stopped", logfields.Error(err))
			}
		}()
	}

	opts := server.Options{
		Addr:            cfg.Server.Addr,
		SiteTitle:       cfg.Site.Title,
		ProfileURL:      w.profile,
		Metrics:         aggregate.New(w.aggregate),
		Posts:           posts,
		Markup:          markup.DefaultRegistry(),
		Recorder:        rec,
		Logger:          g.Logger,
		MetricsHandler:  metrics.HTTPHandler(reg),
		SnapshotTimeout: cfg.Providers.Timeout,
	}
	if w.counter != nil {
		opts.Views = w.counter
	}
	srv := server.New(opts)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	g.Logger.Info("Shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errCh
}
