package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vukan322/devfolio/internal/aggregate"
	"github.com/vukan322/devfolio/internal/content"
	"github.com/vukan322/devfolio/internal/core"
	"github.com/vukan322/devfolio/internal/metrics"
	"github.com/vukan322/devfolio/internal/providers/demo"
	"github.com/vukan322/devfolio/internal/providers/views"
	"github.com/vukan322/devfolio/internal/render"
)

const helloPost = `---
title: Hello World
slug: hello-world
publishedAt: 2024-03-01
excerpt: First post.
---
Read the [about page](/about) first.

<Callout type="tip">
Keep it short.
</Callout>
`

func testPosts(t *testing.T) *content.Collection {
	t.Helper()
	p, err := content.ParsePost("hello-world.md", []byte(helloPost))
	require.NoError(t, err)
	return content.NewCollection([]*content.Post{p})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, mutate func(*Options)) *Server {
	t.Helper()
	posts := testPosts(t)
	d := demo.New()
	opts := Options{
		SiteTitle:  "devfolio",
		ProfileURL: "https://github.com/octocat",
		Metrics: aggregate.New(aggregate.Options{
			Views: d, Coding: d, Host: d, Posts: posts, Logger: quietLogger(),
		}),
		Posts:  posts,
		Logger: quietLogger(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func get(t *testing.T, h http.Handler, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHomeStreamsFallbackThenGrid(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rec.Flushed)

	body := rec.Body.String()
	fallback := strings.Index(body, "data-metrics-fallback")
	grid := strings.Index(body, "data-metrics-grid")
	require.NotEqual(t, -1, fallback)
	require.NotEqual(t, -1, grid)
	assert.Less(t, fallback, grid)
	assert.Equal(t, render.GridSize, strings.Count(body, "data-skeleton"))
	assert.Equal(t, render.GridSize, strings.Count(body, "data-card"))
	assert.Contains(t, body, `id="metrics-ready"`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), "</html>"))
}

type noFlushWriter struct {
	http.ResponseWriter
}

func TestHomeWithoutFlusherWritesGridInPlace(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()

	s.handleHome(noFlushWriter{rec}, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	assert.NotContains(t, body, "data-metrics-fallback")
	assert.NotContains(t, body, "metrics-ready")
	assert.Equal(t, render.GridSize, strings.Count(body, "data-card"))
	assert.False(t, rec.Flushed)
}

func TestMetricsFragment(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s.Handler(), "/fragments/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<div class="grid`))
	assert.Equal(t, render.GridSize, strings.Count(body, "data-card"))
	assert.Contains(t, body, "4,821")
	assert.Contains(t, body, `href="https://github.com/octocat"`)
}

func TestMetricsJSON(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s.Handler(), "/api/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp metricsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Snapshot.TotalPosts)
	require.NotNil(t, resp.Snapshot.Stars)
	assert.Equal(t, 47, *resp.Snapshot.Stars)
	require.Len(t, resp.Cards, render.GridSize)
	for _, c := range resp.Cards {
		assert.NotEqual(t, render.Placeholder, c.Value, c.Title)
	}
}

type failingSource struct{}

func (failingSource) Snapshot(context.Context) core.Snapshot { return core.Snapshot{TotalPosts: 2} }
func (failingSource) HostName() string                       { return "GitLab" }

func TestMetricsJSONWithAllProvidersDown(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.Metrics = failingSource{} })

	var resp metricsResponse
	require.NoError(t, json.NewDecoder(get(t, s.Handler(), "/api/metrics").Body).Decode(&resp))

	require.Len(t, resp.Cards, render.GridSize)
	assert.Equal(t, "2", resp.Cards[0].Value)
	for _, c := range resp.Cards[1:] {
		assert.Equal(t, render.Placeholder, c.Value, c.Title)
	}
	assert.Nil(t, resp.Snapshot.PostViews)
}

func TestBlogIndexListsPosts(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s.Handler(), "/blog")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/blog/hello-world"`)
	assert.Contains(t, body, "Hello World")
	assert.Contains(t, body, "March 1, 2024")
	assert.Contains(t, body, "First post.")
}

func TestBlogIndexEmpty(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.Posts = content.NewCollection(nil) })
	assert.Contains(t, get(t, s.Handler(), "/blog").Body.String(), "No posts yet.")
}

func TestPostRendersMarkupAndCountsViews(t *testing.T) {
	store, err := views.Open(filepath.Join(t.TempDir(), "views.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s := newTestServer(t, func(o *Options) { o.Views = store })

	rec := get(t, s.Handler(), "/blog/hello-world")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<a href="/about" data-link="internal">about page</a>`)
	assert.Contains(t, body, "bg-green-400/20")
	assert.Contains(t, body, "1 views")
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	rec = get(t, s.Handler(), "/blog/hello-world")
	assert.Contains(t, rec.Body.String(), "2 views")

	n, err := store.PostViews(context.Background(), "hello-world")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPostConditionalRequest(t *testing.T) {
	s := newTestServer(t, nil)

	first := get(t, s.Handler(), "/blog/hello-world")
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec := get(t, s.Handler(), "/blog/hello-world", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

type brokenCounter struct{}

func (brokenCounter) Increment(context.Context, string) (int, error) {
	return 0, errors.New("disk full")
}

func TestPostViewFailureShowsPlaceholder(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.Views = brokenCounter{} })

	rec := get(t, s.Handler(), "/blog/hello-world")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), render.Placeholder+" views")
}

func TestUnknownPostIsNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s.Handler(), "/blog/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be found")
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s.Handler(), "/api/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpointExposesPageViews(t *testing.T) {
	reg := metrics.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	s := newTestServer(t, func(o *Options) {
		o.Recorder = rec
		o.MetricsHandler = metrics.HTTPHandler(reg)
	})

	get(t, s.Handler(), "/blog")
	out := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Body.String(), `devfolio_page_views_total{route="/blog"} 1`)
}

func TestMetricsRouteAbsentWithoutHandler(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, func(o *Options) {
		o.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	})
	s.router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := get(t, s.Handler(), "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "status=500")
}
