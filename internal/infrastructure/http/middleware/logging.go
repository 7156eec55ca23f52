package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// maxLoggedBody caps how much of a request body is copied into a debug log
const maxLoggedBody = 4 << 10

// StructuredLogger logs one JSON line per request.
// 5xx responses log at error level and 4xx at warn.
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			attrs := []any{
				slog.String("http.request.method", r.Method),
				slog.String("http.route", RoutePattern(r)),
				slog.String("url.path", r.URL.Path),
				slog.String("url.query", r.URL.RawQuery),
				slog.Int("http.response.status_code", ww.Status()),
				slog.Int("http.response.body.size", ww.BytesWritten()),
				slog.String("duration", duration.String()),
				slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
				slog.String("client.address", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
			}

			logLevel := slog.LevelInfo
			switch {
			case ww.Status() >= 500:
				logLevel = slog.LevelError
			case ww.Status() >= 400:
				logLevel = slog.LevelWarn
			}

			logger.Log(r.Context(), logLevel, "HTTP request completed", attrs...)
		})
	}
}

// RequestBody logs the body of POST, PUT and PATCH requests at debug level.
// The body is restored for the next handler.
func RequestBody(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}
			if r.Body == nil || !logger.Enabled(r.Context(), slog.LevelDebug) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
			if err != nil {
				logger.WarnContext(r.Context(), "Failed to read request body", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			logged := body
			if len(logged) > maxLoggedBody {
				logged = logged[:maxLoggedBody]
			}
			logger.DebugContext(r.Context(), "Request body",
				slog.String("http.request.method", r.Method),
				slog.String("url.path", r.URL.Path),
				slog.String("body", string(logged)),
				slog.Int("body_size", len(body)),
			)

			next.ServeHTTP(w, r)
		})
	}
}
