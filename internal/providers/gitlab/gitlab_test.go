package gitlab

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vukan322/devfolio/internal/core"
)

func newGitLab(t *testing.T, mux *http.ServeMux) *Provider {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New("token", "jdoe", WithBaseURL(srv.URL))
}

func userHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("username") != "jdoe" {
		_, _ = w.Write([]byte(`[]`))
		return
	}
	_, _ = w.Write([]byte(`[{"id":7,"username":"jdoe"}]`))
}

func TestUserStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", userHandler)
	mux.HandleFunc("/users/7/followers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.Header.Get("PRIVATE-TOKEN"))
		w.Header().Set("X-Total", "12")
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/merge_requests", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("author_id"))
		w.Header().Set("X-Total", "30")
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/users/7/projects", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`[{"id":1,"star_count":4},{"id":2,"star_count":0}]`))
		case "2":
			_, _ = w.Write([]byte(`[{"id":3,"star_count":10}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})

	stats, err := newGitLab(t, mux).UserStats(context.Background())
	require.NoError(t, err)

	require.NotNil(t, stats.Followers)
	assert.Equal(t, 12, *stats.Followers)
	require.NotNil(t, stats.PullRequests)
	assert.Equal(t, 30, *stats.PullRequests)

	stars := core.SumStars(stats.Repositories)
	require.NotNil(t, stars)
	assert.Equal(t, 14, *stars)
}

func TestUserStatsDegradesPerField(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", userHandler)
	mux.HandleFunc("/users/7/followers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/merge_requests", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total", "3")
	})
	mux.HandleFunc("/users/7/projects", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	stats, err := newGitLab(t, mux).UserStats(context.Background())
	require.NoError(t, err)

	assert.Nil(t, stats.Followers)
	require.NotNil(t, stats.PullRequests)
	assert.Equal(t, 3, *stats.PullRequests)
	assert.Nil(t, stats.Repositories)
}

func TestUserStatsUnknownUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[]`)
	})

	_, err := newGitLab(t, mux).UserStats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestOptionsRouteDegradedLookupsToLogger(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", userHandler)
	mux.HandleFunc("/users/7/followers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/merge_requests", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total", "1")
	})
	mux.HandleFunc("/users/7/projects", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	client := &http.Client{}
	p := New("token", "jdoe",
		WithBaseURL(srv.URL+"/"),
		WithHTTPClient(client),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	assert.Same(t, client, p.client)
	assert.Equal(t, srv.URL, p.baseURL)

	stats, err := p.UserStats(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stats.Followers)
	assert.Contains(t, logs.String(), "followers unavailable")
}
