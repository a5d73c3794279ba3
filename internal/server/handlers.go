package server

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vukan322/devfolio/internal/content"
	"github.com/vukan322/devfolio/internal/core"
	"github.com/vukan322/devfolio/internal/logfields"
	"github.com/vukan322/devfolio/internal/markup"
	"github.com/vukan322/devfolio/internal/render"
)

// metricsResponse is the body of GET /api/metrics.
type metricsResponse struct {
	Snapshot core.Snapshot `json:"snapshot"`
	Cards    []render.Card `json:"cards"`
}

func (s *Server) snapshot(ctx context.Context) core.Snapshot {
	if s.opts.Metrics == nil {
		return core.Snapshot{}
	}
	if s.opts.SnapshotTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SnapshotTimeout)
		defer cancel()
	}
	return s.opts.Metrics.Snapshot(ctx)
}

func (s *Server) cards(snap core.Snapshot) []render.Card {
	host := ""
	if s.opts.Metrics != nil {
		host = s.opts.Metrics.HostName()
	}
	return render.Cards(snap, render.Options{
		BlogPath:   "/blog",
		ProfileURL: s.opts.ProfileURL,
		HostName:   host,
	})
}

func (s *Server) grid(ctx context.Context) (template.HTML, error) {
	return render.RenderGrid(s.cards(s.snapshot(ctx)))
}

// handleHome sends the page with the skeleton grid first and swaps in the
// real grid once the snapshot joins. Writers that cannot flush get a single
// response with the real grid in place.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.opts.Recorder.IncPageView("/")
	site := headData{Site: s.opts.SiteTitle}

	flusher, ok := w.(http.Flusher)
	if !ok {
		grid, err := s.grid(r.Context())
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := s.writeHome(r.Context(), &buf, site, grid, nil); err != nil {
			s.respondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if err := s.writeHome(r.Context(), w, site, render.Fallback(), flusher); err != nil {
		s.logger.Error("Streaming home page failed", logfields.Error(err))
	}
}

// writeHome writes the page around slot. With a flusher the slot is the
// fallback: the page is flushed, the snapshot resolved, and the grid
// appended as a swap.
func (s *Server) writeHome(ctx context.Context, w io.Writer, site headData, slot template.HTML, flusher http.Flusher) error {
	if err := writeTemplate(w, "head", site); err != nil {
		return err
	}
	if err := writeTemplate(w, "home-intro", site); err != nil {
		return err
	}
	if err := writeTemplate(w, "metrics-slot", slot); err != nil {
		return err
	}

	if flusher != nil {
		flusher.Flush()
		grid, err := s.grid(ctx)
		if err != nil {
			return err
		}
		if err := writeTemplate(w, "metrics-swap", grid); err != nil {
			return err
		}
	}
	return writeTemplate(w, "foot", nil)
}

func (s *Server) handleMetricsFragment(w http.ResponseWriter, r *http.Request) {
	grid, err := s.grid(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(grid))
}

func (s *Server) handleMetricsJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	s.respondJSON(w, http.StatusOK, metricsResponse{Snapshot: snap, Cards: s.cards(snap)})
}

func (s *Server) handleBlogIndex(w http.ResponseWriter, r *http.Request) {
	s.opts.Recorder.IncPageView("/blog")

	var posts []*content.Post
	if s.opts.Posts != nil {
		posts = s.opts.Posts.All()
	}

	body, err := page(s.opts.SiteTitle, "Blog", "blog-index", posts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// handlePost renders one post. Every hit counts as a view, including
// conditional requests answered with 304.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if s.opts.Posts == nil {
		s.respondError(w, r, content.ErrNotFound)
		return
	}
	post, err := s.opts.Posts.BySlug(slug)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.opts.Recorder.IncPageView("/blog/{slug}")

	views := render.Placeholder
	if s.opts.Views != nil {
		n, err := s.opts.Views.Increment(r.Context(), post.Slug)
		if err != nil {
			s.logger.Warn("Post view not recorded", logfields.Slug(post.Slug), logfields.Error(err))
		} else {
			views = strconv.Itoa(n)
		}
	}

	etag := `W/"` + post.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	if post.Fingerprint != "" && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	article, err := markup.Render(post.Body, s.opts.Markup)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	body, err := page(s.opts.SiteTitle, post.Title, "post", postData{Post: post, Views: views, Body: article})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
