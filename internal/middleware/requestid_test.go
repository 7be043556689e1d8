package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avnegotiate/internal/observability"
)

func TestRequestID_Generated(t *testing.T) {
	t.Parallel()

	var fromContext string
	handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		fromContext = observability.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foo", nil))

	require.NotEmpty(t, fromContext)
	_, err := uuid.Parse(fromContext)
	assert.NoError(t, err)
	assert.Equal(t, fromContext, rec.Header().Get(HeaderXRequestID))
}

func TestRequestID_ReusesIncomingHeader(t *testing.T) {
	t.Parallel()

	var fromContext string
	handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		fromContext = observability.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/foo", nil)
	req.Header.Set(HeaderXRequestID, "upstream-id")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", fromContext)
	assert.Equal(t, "upstream-id", rec.Header().Get(HeaderXRequestID))
}

func TestRequestIDWithGenerator(t *testing.T) {
	t.Parallel()

	handler := RequestIDWithGenerator(func() string {
		return "fixed-id"
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foo", nil))

	assert.Equal(t, "fixed-id", rec.Header().Get(HeaderXRequestID))
}
