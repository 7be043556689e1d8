package negotiate

import (
	"net/http"
	"sort"

	"github.com/vyrodovalexey/avnegotiate/internal/util"
)

// defaultQuality is the source quality assumed when neither a format nor
// the table defaults declare one.
const defaultQuality = 1.0

// Format describes one representation of a resource.
type Format struct {
	// MediaType is the representation's media type, e.g. "application/xml".
	// Required on every named format unless the table defaults supply one.
	MediaType string

	// Charset is the representation's character set, e.g. "utf-8".
	Charset string

	// Language is the representation's content language, e.g. "en".
	Language string

	// Encoding is the representation's content coding. Informational only:
	// it participates in Accept-Encoding scoring but is never written to
	// responses.
	Encoding string

	// Quality is the source quality factor. Nil inherits the table
	// default, which itself defaults to 1.0.
	Quality *float64

	// Handler, when set, is a dedicated handler that short-circuits the
	// wrapped application for requests negotiated to this format.
	Handler http.Handler
}

// Table maps format names to formats. Defaults supplies attribute values
// inherited by every named format that leaves the attribute unset.
// A Table is immutable after construction and safe for concurrent reads.
type Table struct {
	Defaults Format
	Named    map[string]Format
}

// Variant is the negotiation-facing view of one named format with all
// attribute inheritance resolved. Size is always zero: size-based
// selection is unsupported.
type Variant struct {
	Name      string
	Quality   float64
	MediaType string
	Encoding  string
	Charset   string
	Language  string
	Size      int
}

// Validate checks that every named format has a resolvable media type.
// Formats are checked in name order so the reported offender is stable.
func (t *Table) Validate() error {
	if t.Defaults.MediaType != "" {
		return nil
	}
	for _, name := range t.names() {
		if t.Named[name].MediaType == "" {
			return util.NewConfigError("formats."+name,
				"media type is required because the defaults entry has none")
		}
	}
	return nil
}

// About returns the effective attributes of the named format: each
// attribute is the format's own value if set, else the defaults' value,
// else (for quality only) 1.0. The second return value is false for
// unknown names.
func (t *Table) About(name string) (Format, bool) {
	f, ok := t.Named[name]
	if !ok {
		return Format{}, false
	}

	eff := Format{
		MediaType: f.MediaType,
		Charset:   f.Charset,
		Language:  f.Language,
		Encoding:  f.Encoding,
		Handler:   f.Handler,
	}
	if eff.MediaType == "" {
		eff.MediaType = t.Defaults.MediaType
	}
	if eff.Charset == "" {
		eff.Charset = t.Defaults.Charset
	}
	if eff.Language == "" {
		eff.Language = t.Defaults.Language
	}
	if eff.Encoding == "" {
		eff.Encoding = t.Defaults.Encoding
	}

	q := defaultQuality
	switch {
	case f.Quality != nil:
		q = *f.Quality
	case t.Defaults.Quality != nil:
		q = *t.Defaults.Quality
	}
	eff.Quality = &q

	return eff, true
}

// Handler returns the dedicated handler of the named format, or nil when
// the name is unknown or the format has none.
func (t *Table) Handler(name string) http.Handler {
	if f, ok := t.Named[name]; ok {
		return f.Handler
	}
	return nil
}

// Variants enumerates every named format with inheritance resolved,
// sorted by name for reproducible negotiation and test output.
func (t *Table) Variants() []Variant {
	names := t.names()
	variants := make([]Variant, 0, len(names))
	for _, name := range names {
		eff, _ := t.About(name)
		variants = append(variants, Variant{
			Name:      name,
			Quality:   *eff.Quality,
			MediaType: eff.MediaType,
			Encoding:  eff.Encoding,
			Charset:   eff.Charset,
			Language:  eff.Language,
			Size:      0,
		})
	}
	return variants
}

// names returns the named format keys in sorted order.
func (t *Table) names() []string {
	names := make([]string, 0, len(t.Named))
	for name := range t.Named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
