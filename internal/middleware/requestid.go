package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/avnegotiate/internal/observability"
)

// RequestID returns a middleware that attaches a request ID to each
// request, reusing an incoming X-Request-ID header when present.
func RequestID() func(http.Handler) http.Handler {
	return RequestIDWithGenerator(func() string {
		return uuid.New().String()
	})
}

// RequestIDWithGenerator returns a request ID middleware that uses a
// custom ID generator.
func RequestIDWithGenerator(generator func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderXRequestID)
			if requestID == "" {
				requestID = generator()
			}

			ctx := observability.ContextWithRequestID(r.Context(), requestID)
			r = r.WithContext(ctx)

			w.Header().Set(HeaderXRequestID, requestID)

			next.ServeHTTP(w, r)
		})
	}
}
