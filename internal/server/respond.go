package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vukan322/devfolio/internal/content"
	"github.com/vukan322/devfolio/internal/logfields"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", logfields.Error(err))
	}
}

// respondError is the single mapping from handler errors to responses:
// content.ErrNotFound is a 404, anything else a 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong."
	if errors.Is(err, content.ErrNotFound) {
		status = http.StatusNotFound
		message = "This page could not be found."
	} else {
		s.logger.Error("Request failed",
			logfields.Path(r.URL.Path),
			logfields.Error(err))
	}

	if wantsJSON(r) {
		s.respondJSON(w, status, map[string]string{"error": http.StatusText(status)})
		return
	}

	body, renderErr := page(s.opts.SiteTitle, http.StatusText(status), "error", errorData{Status: status, Message: message})
	if renderErr != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
