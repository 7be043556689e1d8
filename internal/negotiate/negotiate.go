package negotiate

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avnegotiate/internal/observability"
	"github.com/vyrodovalexey/avnegotiate/internal/util"
)

// ExtensionMode controls path-extension format selection.
type ExtensionMode string

const (
	// ExtensionOff disables path-extension selection.
	ExtensionOff ExtensionMode = ""

	// ExtensionStrip selects by path extension and removes the suffix
	// from the path seen by the wrapped handler.
	ExtensionStrip ExtensionMode = "strip"

	// ExtensionKeep selects by path extension and leaves the path
	// untouched.
	ExtensionKeep ExtensionMode = "keep"
)

// Decision sources, as reported in trace diagnostics.
const (
	SourceParameter = "query parameter"
	SourceExtension = "extension"
	SourceHeader    = "HTTP negotiation"
)

// Decision is the outcome of negotiating one request.
type Decision struct {
	// Format is the chosen format name; empty when nothing matched.
	Format string

	// Source names the rule that chose the format: SourceParameter,
	// SourceExtension or SourceHeader. Empty when Format is empty.
	Source string

	// PathRewritten reports that extension selection in strip mode
	// removed the format suffix. Path then holds the effective path for
	// the wrapped handler, which may be empty when the whole path was
	// the suffix.
	PathRewritten bool
	Path          string
}

// Negotiator decides the representation format for incoming requests.
// It is immutable after construction and safe for concurrent use.
type Negotiator struct {
	table        *Table
	parameter    string
	extension    ExtensionMode
	explicitOnly bool
	logger       observability.Logger
}

// Option is a functional option for configuring the Negotiator.
type Option func(*Negotiator)

// WithParameter enables explicit format selection via the named query
// parameter.
func WithParameter(name string) Option {
	return func(n *Negotiator) {
		n.parameter = name
	}
}

// WithExtension enables explicit format selection via a path-extension
// suffix in the given mode.
func WithExtension(mode ExtensionMode) Option {
	return func(n *Negotiator) {
		n.extension = mode
	}
}

// WithExplicitOnly disables header-based negotiation, leaving only the
// query-parameter and path-extension rules.
func WithExplicitOnly() Option {
	return func(n *Negotiator) {
		n.explicitOnly = true
	}
}

// WithLogger sets the logger for negotiation trace diagnostics.
func WithLogger(logger observability.Logger) Option {
	return func(n *Negotiator) {
		n.logger = logger
	}
}

// New creates a Negotiator over the given format table. The table is
// mandatory; a table whose defaults entry has no media type is rejected
// unless every named format declares its own.
func New(table *Table, opts ...Option) (*Negotiator, error) {
	if table == nil {
		return nil, util.NewConfigError("formats", "format table is required")
	}

	n := &Negotiator{
		table:  table,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}

	switch n.extension {
	case ExtensionOff, ExtensionStrip, ExtensionKeep:
	default:
		return nil, util.NewConfigError("extension",
			fmt.Sprintf("unknown extension mode %q", string(n.extension)))
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Table returns the negotiator's format table.
func (n *Negotiator) Table() *Table {
	return n.table
}

// Negotiate decides the format for the request. Rules apply in strict
// priority order, first match wins: query parameter, path extension,
// header-based negotiation. Unknown parameter and extension values fall
// through silently. The request is never mutated.
func (n *Negotiator) Negotiate(r *http.Request) Decision {
	if d, ok := n.fromParameter(r); ok {
		return d
	}
	if d, ok := n.fromExtension(r); ok {
		return d
	}
	return n.fromHeaders(r)
}

// fromParameter applies the query-parameter rule.
func (n *Negotiator) fromParameter(r *http.Request) (Decision, bool) {
	if n.parameter == "" {
		return Decision{}, false
	}
	value := r.URL.Query().Get(n.parameter)
	if value == "" {
		return Decision{}, false
	}
	if _, ok := n.table.Named[value]; !ok {
		return Decision{}, false
	}

	n.logger.Debug("format selected",
		observability.String("source", SourceParameter),
		observability.String("format", value),
		observability.String("path", r.URL.Path),
	)
	return Decision{Format: value, Source: SourceParameter}, true
}

// fromExtension applies the path-extension rule.
func (n *Negotiator) fromExtension(r *http.Request) (Decision, bool) {
	if n.extension == ExtensionOff {
		return Decision{}, false
	}
	path := r.URL.Path
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return Decision{}, false
	}
	name := path[idx+1:]
	if _, ok := n.table.Named[name]; !ok {
		return Decision{}, false
	}

	d := Decision{Format: name, Source: SourceExtension}
	if n.extension == ExtensionStrip {
		d.PathRewritten = true
		d.Path = path[:idx]
	}

	n.logger.Debug("format selected",
		observability.String("source", SourceExtension),
		observability.String("format", name),
		observability.String("path", path),
		observability.Bool("stripped", d.PathRewritten),
	)
	return d, true
}

// fromHeaders applies header-based negotiation unless explicit-only mode
// is set. The result may be empty; that is not an error.
func (n *Negotiator) fromHeaders(r *http.Request) Decision {
	if n.explicitOnly {
		return Decision{}
	}

	name := negotiateHeaders(n.table.Variants(),
		r.Header.Get("Accept"),
		r.Header.Get("Accept-Charset"),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
	)
	if name == "" {
		n.logger.Debug("no format negotiated",
			observability.String("source", SourceHeader),
			observability.String("path", r.URL.Path),
		)
		return Decision{}
	}

	n.logger.Debug("format selected",
		observability.String("source", SourceHeader),
		observability.String("format", name),
		observability.String("path", r.URL.Path),
	)
	return Decision{Format: name, Source: SourceHeader}
}
