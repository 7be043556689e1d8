package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/vyrodovalexey/avnegotiate/internal/observability"
)

// Recovery returns a middleware that recovers from panics in downstream
// handlers. The error response is plain text: representation headers are
// negotiated downstream of this middleware and cannot be assumed here.
func Recovery(logger observability.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						observability.String("path", r.URL.Path),
						observability.String("method", r.Method),
						observability.Any("error", err),
						observability.String("stack", string(debug.Stack())),
					)

					w.Header().Set(HeaderContentType, ContentTypeTextPlain)
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = io.WriteString(w, "Internal Server Error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
