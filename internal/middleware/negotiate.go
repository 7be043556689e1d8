package middleware

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avnegotiate/internal/negotiate"
	"github.com/vyrodovalexey/avnegotiate/internal/observability"
	"github.com/vyrodovalexey/avnegotiate/internal/util"
)

// Negotiate returns a middleware that decides the representation format
// for each request, stores the chosen name in the request context,
// dispatches to the format's dedicated handler when one is configured,
// and fills in Content-Type/Content-Language on the response when the
// downstream handler left them unset.
//
// In extension strip mode the downstream handler receives a derived
// request with the format suffix removed from the path and request URI;
// the incoming request itself is never mutated, so callers above this
// middleware always observe the original path.
func Negotiate(n *negotiate.Negotiator, logger observability.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}

	metrics := negotiate.GetMetrics()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := n.Negotiate(r)
			metrics.RecordDecision(decision)

			ctx := util.ContextWithFormat(r.Context(), decision.Format)
			eff := effectiveRequest(r, decision, ctx)

			dw := &decoratingWriter{
				ResponseWriter: w,
				table:          n.Table(),
				format:         decision.Format,
			}

			if h := n.Table().Handler(decision.Format); h != nil {
				h.ServeHTTP(dw, eff)
			} else {
				next.ServeHTTP(dw, eff)
			}

			// Handlers that return without writing still get decorated
			// headers on the implicit 200.
			dw.decorate()

			logger.Debug("request negotiated",
				observability.String("format", decision.Format),
				observability.String("source", decision.Source),
				observability.String("path", r.URL.Path),
			)
		})
	}
}

// NotAcceptable returns the terminal fallback handler: it rejects every
// request with 406 and a plain-text body.
func NotAcceptable() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderContentType, ContentTypeTextPlain)
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = io.WriteString(w, notAcceptableBody)
	})
}

// Handler returns the negotiation layer as a terminal endpoint. Requests
// resolved to a format with a dedicated handler are served by it; all
// others receive the 406 fallback.
func Handler(n *negotiate.Negotiator, logger observability.Logger) http.Handler {
	return Negotiate(n, logger)(NotAcceptable())
}

// effectiveRequest builds the request the downstream handler sees: the
// original request plus the negotiation context, and the stripped path
// when extension strip mode matched. The strip is applied to the request
// URI only when the original path prefixes it verbatim, preserving any
// query string.
func effectiveRequest(r *http.Request, d negotiate.Decision, ctx context.Context) *http.Request {
	if !d.PathRewritten {
		return r.WithContext(ctx)
	}

	eff := r.Clone(ctx)
	original := r.URL.Path
	eff.URL.Path = d.Path
	eff.URL.RawPath = ""
	if strings.HasPrefix(r.RequestURI, original) {
		eff.RequestURI = d.Path + r.RequestURI[len(original):]
	}
	return eff
}

// decoratingWriter fills negotiated representation headers immediately
// before the response is committed. Tying decoration to the first write
// keeps it correct for handlers that produce their response
// asynchronously: whenever the response becomes available, headers are
// completed first.
type decoratingWriter struct {
	http.ResponseWriter
	table     *negotiate.Table
	format    string
	decorated bool
}

// decorate fills absent representation headers. Headers already written
// by the handler are left alone.
func (dw *decoratingWriter) decorate() {
	if dw.decorated {
		return
	}
	dw.decorated = true
	dw.table.AddHeaders(dw.Header(), dw.format)
}

// WriteHeader decorates, then forwards the status code.
func (dw *decoratingWriter) WriteHeader(code int) {
	dw.decorate()
	dw.ResponseWriter.WriteHeader(code)
}

// Write decorates on an implicit 200, then forwards the body bytes.
func (dw *decoratingWriter) Write(b []byte) (int, error) {
	dw.decorate()
	return dw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher for streaming handlers.
func (dw *decoratingWriter) Flush() {
	dw.decorate()
	if f, ok := dw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
