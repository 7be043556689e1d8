package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avnegotiate/internal/negotiate"
	"github.com/vyrodovalexey/avnegotiate/internal/util"
)

// echoHandler writes "format|path|uri" so tests can observe exactly what
// the downstream handler saw.
func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := util.FormatFromContext(r.Context())
		fmt.Fprintf(w, "%s|%s|%s", format, r.URL.Path, r.RequestURI)
	})
}

func newNegotiator(t *testing.T, opts ...negotiate.Option) *negotiate.Negotiator {
	t.Helper()

	table := &negotiate.Table{
		Named: map[string]negotiate.Format{
			"xml":  {MediaType: "application/xml"},
			"html": {MediaType: "text/html"},
		},
	}
	n, err := negotiate.New(table, opts...)
	require.NoError(t, err)
	return n
}

func TestNegotiate_ExtensionStrip(t *testing.T) {
	t.Parallel()

	n := newNegotiator(t, negotiate.WithExtension(negotiate.ExtensionStrip))
	handler := Negotiate(n, nil)(echoHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/foo.xml", nil)
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "xml|/foo|/foo", rec.Body.String())

	// The caller's request is untouched once the handler returns.
	assert.Equal(t, "/foo.xml", req.URL.Path)
	assert.Equal(t, "/foo.xml", req.RequestURI)
}

func TestNegotiate_ParameterBeatsExtension(t *testing.T) {
	t.Parallel()

	n := newNegotiator(t,
		negotiate.WithParameter("format"),
		negotiate.WithExtension(negotiate.ExtensionStrip),
	)
	handler := Negotiate(n, nil)(echoHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/foo.xml?format=html", nil)
	handler.ServeHTTP(rec, req)

	// The parameter rule wins and performs no path mutation.
	assert.Equal(t, "html|/foo.xml|/foo.xml?format=html", rec.Body.String())
}

func TestNegotiate_UnknownParameterFallsThroughToExtension(t *testing.T) {
	t.Parallel()

	n := newNegotiator(t,
		negotiate.WithParameter("format"),
		negotiate.WithExtension(negotiate.ExtensionStrip),
	)
	handler := Negotiate(n, nil)(echoHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/foo.xml?format=baz", nil)
	handler.ServeHTTP(rec, req)

	// Extension wins; query string survives the suffix strip.
	assert.Equal(t, "xml|/foo|/foo?format=baz", rec.Body.String())
	assert.Equal(t, "/foo.xml", req.URL.Path)
	assert.Equal(t, "/foo.xml?format=baz", req.RequestURI)
}

func TestNegotiate_EmptyNamedTable(t *testing.T) {
	t.Parallel()

	table := &negotiate.Table{Defaults: negotiate.Format{Charset: "utf-8"}}
	n, err := negotiate.New(table,
		negotiate.WithParameter("format"),
		negotiate.WithExtension(negotiate.ExtensionStrip),
	)
	require.NoError(t, err)

	handler := Negotiate(n, nil)(echoHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/foo.xml?format=xml", nil)
	req.Header.Set(HeaderAccept, "*/*")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "|/foo.xml|/foo.xml?format=xml", rec.Body.String())
}

func TestNegotiate_HeaderNegotiationDecoratesResponse(t *testing.T) {
	t.Parallel()

	table := &negotiate.Table{
		Defaults: negotiate.Format{Charset: "utf-8"},
		Named: map[string]negotiate.Format{
			"xml":  {MediaType: "application/xml"},
			"html": {MediaType: "text/html", Language: "en"},
		},
	}
	n, err := negotiate.New(table)
	require.NoError(t, err)

	handler := Negotiate(n, nil)(echoHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/foo", nil)
	req.Header.Set(HeaderAccept, "text/html")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "html|/foo|/foo", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get(HeaderContentType))
	assert.Equal(t, "en", rec.Header().Get(HeaderContentLanguage))
}

func TestNegotiate_HandlerHeadersWin(t *testing.T) {
	t.Parallel()

	n := newNegotiator(t, negotiate.WithExtension(negotiate.ExtensionKeep))
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderContentType, "application/xhtml+xml")
		w.WriteHeader(http.StatusOK)
	})
	handler := Negotiate(n, nil)(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foo.xml", nil))

	assert.Equal(t, "application/xhtml+xml", rec.Header().Get(HeaderContentType))
}

func TestNegotiate_DecoratesWhenHandlerNeverWrites(t *testing.T) {
	t.Parallel()

	n := newNegotiator(t, negotiate.WithExtension(negotiate.ExtensionKeep))
	silent := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	handler := Negotiate(n, nil)(silent)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foo.xml", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get(HeaderContentType))
}

func TestNegotiate_DedicatedFormatHandler(t *testing.T) {
	t.Parallel()

	var sawPath string
	dedicated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawPath = r.URL.Path
		w.WriteHeader(http.StatusTeapot)
	})

	table := &negotiate.Table{
		Named: map[string]negotiate.Format{
			"xml":  {MediaType: "application/xml", Handler: dedicated},
			"html": {MediaType: "text/html"},
		},
	}
	n, err := negotiate.New(table, negotiate.WithExtension(negotiate.ExtensionStrip))
	require.NoError(t, err)

	nextCalled := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		nextCalled = true
	})
	handler := Negotiate(n, nil)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foo.xml", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "/foo", sawPath)
	assert.False(t, nextCalled)
	assert.Equal(t, "application/xml", rec.Header().Get(HeaderContentType))
}

func TestNegotiate_OuterMiddlewareSeesOriginalRequest(t *testing.T) {
	t.Parallel()

	n := newNegotiator(t, negotiate.WithExtension(negotiate.ExtensionStrip))
	inner := Negotiate(n, nil)(echoHandler())

	var pathAfter, uriAfter string
	outer := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(w, r)
		pathAfter = r.URL.Path
		uriAfter = r.RequestURI
	})

	rec := httptest.NewRecorder()
	outer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foo.xml?x=1", nil))

	assert.Equal(t, "xml|/foo|/foo?x=1", rec.Body.String())
	assert.Equal(t, "/foo.xml", pathAfter)
	assert.Equal(t, "/foo.xml?x=1", uriAfter)
}

func TestNotAcceptable(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NotAcceptable().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	assert.Equal(t, ContentTypeTextPlain, rec.Header().Get(HeaderContentType))
	assert.Equal(t, notAcceptableBody, rec.Body.String())
}

func TestHandler_TerminalFallback(t *testing.T) {
	t.Parallel()

	n := newNegotiator(t)
	handler := Handler(n, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/foo", nil)
	req.Header.Set(HeaderAccept, "image/png")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	// The fallback's own Content-Type survives decoration.
	assert.Equal(t, ContentTypeTextPlain, rec.Header().Get(HeaderContentType))
	assert.Equal(t, notAcceptableBody, rec.Body.String())
}

func TestHandler_TerminalDispatchesDedicatedHandler(t *testing.T) {
	t.Parallel()

	table := &negotiate.Table{
		Named: map[string]negotiate.Format{
			"xml": {
				MediaType: "application/xml",
				Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte("<ok/>"))
				}),
			},
		},
	}
	n, err := negotiate.New(table)
	require.NoError(t, err)

	handler := Handler(n, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/foo", nil)
	req.Header.Set(HeaderAccept, "application/xml")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<ok/>", rec.Body.String())
	assert.Equal(t, "application/xml", rec.Header().Get(HeaderContentType))
}
