package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vukan322/devfolio/internal/logfields"
)

// requestLogger logs one line per request. The wrapped writer keeps
// http.Flusher so the streamed home page still flushes through it.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "HTTP request",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.Status(status),
				slog.Int("bytes", ww.BytesWritten()),
				logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
				logfields.RequestID(middleware.GetReqID(r.Context())),
				logfields.RemoteAddr(r.RemoteAddr),
			)
		})
	}
}
