package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mrops-br/catalog-api/internal/infrastructure/http/response"
)

// Recoverer turns a panic into a logged 500 JSON response.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recoverer(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.ErrorContext(r.Context(), "Panic recovered",
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)
				response.InternalError(w)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
