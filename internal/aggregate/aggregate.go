// Package aggregate fans out to the metric providers for one render pass
// and joins their results into a core.Snapshot.
package aggregate

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vukan322/devfolio/internal/core"
	"github.com/vukan322/devfolio/internal/logfields"
	"github.com/vukan322/devfolio/internal/metrics"
	"github.com/vukan322/devfolio/internal/providers"
)

// PostCounter is the slice of the post collection the aggregator needs.
type PostCounter interface {
	Len() int
}

type Options struct {
	Views    providers.ViewsProvider
	Coding   providers.CodingProvider
	Host     providers.SourceHostProvider
	Posts    PostCounter
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

type Aggregator struct {
	views    providers.ViewsProvider
	coding   providers.CodingProvider
	host     providers.SourceHostProvider
	posts    PostCounter
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New builds an Aggregator. Any provider may be nil, in which case the
// fields it owns are always absent.
func New(opts Options) *Aggregator {
	a := &Aggregator{
		views:    opts.Views,
		coding:   opts.Coding,
		host:     opts.Host,
		posts:    opts.Posts,
		logger:   opts.Logger,
		recorder: opts.Recorder,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.recorder == nil {
		a.recorder = metrics.NoopRecorder{}
	}
	return a
}

// HostName is the display name of the source-hosting provider.
func (a *Aggregator) HostName() string {
	if a.host == nil {
		return ""
	}
	return a.host.DisplayName()
}

// Snapshot queries every provider concurrently and waits for all of them.
// Failures are logged and leave the affected fields nil; Snapshot itself
// never fails. ctx is the only deadline.
func (a *Aggregator) Snapshot(ctx context.Context) core.Snapshot {
	start := time.Now()

	var r core.Results
	if a.posts != nil {
		r.TotalPosts = a.posts.Len()
	}

	var g errgroup.Group

	if a.views != nil {
		g.Go(func() error {
			if n, ok := query(ctx, a, a.views.Name(), "total_views", a.views.TotalViews); ok {
				r.PostViews = &n
			}
			return nil
		})
	}

	if a.coding != nil {
		g.Go(func() error {
			r.Recent, _ = query(ctx, a, a.coding.Name(), "recent_summary", a.coding.RecentSummary)
			return nil
		})
		g.Go(func() error {
			r.AllTime, _ = query(ctx, a, a.coding.Name(), "all_time_summary", a.coding.AllTimeSummary)
			return nil
		})
	}

	if a.host != nil {
		g.Go(func() error {
			r.User, _ = query(ctx, a, a.host.Name(), "user_stats", a.host.UserStats)
			return nil
		})
	}

	_ = g.Wait()

	s := core.BuildSnapshot(r)
	missing := s.MissingFields()
	elapsed := time.Since(start)
	a.recorder.ObserveSnapshot(elapsed, missing)
	a.logger.Debug("Snapshot resolved",
		logfields.DurationMS(float64(elapsed.Microseconds())/1000),
		slog.Int("missing_fields", missing))
	return s
}

// query runs one provider call, recording its outcome. A failure is
// absorbed here and reported as ok=false.
func query[T any](ctx context.Context, a *Aggregator, provider, name string, fn func(context.Context) (T, error)) (T, bool) {
	start := time.Now()
	v, err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		a.recorder.ObserveProviderQuery(provider, name, elapsed, metrics.ResultFailed)
		a.logger.Warn("Provider query failed; rendering placeholder",
			logfields.Provider(provider),
			logfields.Query(name),
			logfields.Error(err))
		var zero T
		return zero, false
	}

	a.recorder.ObserveProviderQuery(provider, name, elapsed, metrics.ResultSuccess)
	return v, true
}
