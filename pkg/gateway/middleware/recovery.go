package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"parley-hq/parley/pkg/gateway"
)

// Recovery converts handler panics into a JSON 500 response. The panic
// value and stack trace go to the log; the client sees only a generic
// message.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				gateway.WriteJSONError(w, http.StatusInternalServerError,
					string(gateway.OutcomeInternalError),
					"An internal error occurred. Please try again later.")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
