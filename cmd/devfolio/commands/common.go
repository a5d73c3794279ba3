package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/vukan322/devfolio/internal/aggregate"
	"github.com/vukan322/devfolio/internal/config"
	"github.com/vukan322/devfolio/internal/content"
	"github.com/vukan322/devfolio/internal/metrics"
	"github.com/vukan322/devfolio/internal/providers/demo"
	githubprovider "github.com/vukan322/devfolio/internal/providers/github"
	gitlabprovider "github.com/vukan322/devfolio/internal/providers/gitlab"
	"github.com/vukan322/devfolio/internal/providers/views"
	"github.com/vukan322/devfolio/internal/providers/wakatime"
)

// Global is passed to every command's Run.
type Global struct {
	Logger *slog.Logger
}

type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"devfolio.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Demo    bool             `help:"Use fixed demo numbers instead of live providers"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve ServeCmd `cmd:"" default:"1" help:"Serve the site over HTTP"`
	Card  CardCmd  `cmd:"" help:"Render the metrics grid once to an SVG or HTML file"`
	Posts PostsCmd `cmd:"" help:"List the posts in the content directory"`
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the config file. In demo mode a missing file falls back
// to defaults and validation is skipped.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		if root.Demo && errors.Is(err, config.ErrMissingConfig) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	if root.Demo {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s:\n%w", root.Config, err)
	}
	return cfg, nil
}

// wiring holds the providers built from config. Close releases the view
// store when one was opened.
type wiring struct {
	aggregate aggregate.Options
	counter   *views.Store
	profile   string
	closers   []io.Closer
}

func (w *wiring) Close() error {
	var errs []error
	for _, c := range w.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func wire(cfg *config.Config, demoMode bool, posts aggregate.PostCounter, logger *slog.Logger, rec metrics.Recorder) (*wiring, error) {
	w := &wiring{profile: cfg.Site.SocialLinks.GitHub.URL}
	w.aggregate = aggregate.Options{Posts: posts, Logger: logger, Recorder: rec}

	if demoMode {
		d := demo.New()
		w.aggregate.Views, w.aggregate.Coding, w.aggregate.Host = d, d, d
		logger.Info("Demo mode: serving fixed metrics")
		return w, nil
	}

	switch cfg.Providers.Views.Driver {
	case config.ViewsSQLite:
		store, err := views.Open(cfg.Providers.Views.DSN)
		if err != nil {
			return nil, err
		}
		w.counter = store
		w.aggregate.Views = store
		w.closers = append(w.closers, store)
	case config.ViewsHTTP:
		w.aggregate.Views = views.NewRemote(cfg.Providers.Views.URL)
	}

	switch cfg.Providers.Host {
	case config.HostGitHub:
		gh := cfg.Providers.GitHub
		if gh.Token == "" {
			logger.Warn("GitHub token not set; GraphQL requests will be rejected",
				slog.String("env", config.EnvGitHubToken))
		}
		opts := []githubprovider.Option{githubprovider.WithLogger(logger)}
		if gh.BaseURL != "" {
			opts = append(opts, githubprovider.WithBaseURL(gh.BaseURL))
		}
		w.aggregate.Host = githubprovider.New(gh.Token, gh.User, opts...)
	case config.HostGitLab:
		gl := cfg.Providers.GitLab
		opts := []gitlabprovider.Option{gitlabprovider.WithLogger(logger)}
		if gl.BaseURL != "" {
			opts = append(opts, gitlabprovider.WithBaseURL(gl.BaseURL))
		}
		w.aggregate.Host = gitlabprovider.New(gl.Token, gl.User, opts...)
	}

	if key := cfg.Providers.WakaTime.APIKey; key != "" {
		var opts []wakatime.Option
		if u := cfg.Providers.WakaTime.BaseURL; u != "" {
			opts = append(opts, wakatime.WithBaseURL(u))
		}
		w.aggregate.Coding = wakatime.New(key, opts...)
	} else {
		logger.Info("WakaTime key not set; coding cards will show placeholders",
			slog.String("env", config.EnvWakaTimeKey))
	}

	return w, nil
}

// loadPosts reads the content directory. A missing directory is an empty
// blog rather than an error.
func loadPosts(dir string, logger *slog.Logger) (*content.Collection, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		logger.Warn("Content directory not found; blog is empty", slog.String("dir", dir))
		return content.NewCollection(nil), nil
	}
	c, err := content.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	logger.Debug("Posts loaded", slog.String("dir", dir), slog.Int("count", c.Len()))
	return c, nil
}
