package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Observer is told about every finished request.
type Observer func(method string, statusCode int)

// responseWriter records the response status for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logging logs every HTTP request with its status and duration and reports
// it to the observers.
func Logging(next http.Handler, log *slog.Logger, observers ...Observer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		log.LogAttrs(r.Context(), levelFor(ww.statusCode), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Int("status", ww.statusCode),
			slog.Duration("duration", time.Since(start)),
		)

		for _, observe := range observers {
			observe(r.Method, ww.statusCode)
		}
	})
}

func levelFor(statusCode int) slog.Level {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return slog.LevelError
	case statusCode >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}
