// Package negotiate implements server-driven content negotiation over a
// table of named representation formats.
//
// A format names one representation of a resource (for example "xml" or
// "html") together with its media type and optional charset, language,
// encoding and quality. Formats are collected in a Table; attributes left
// unset on a named format are inherited from the table's Defaults entry.
//
// A Negotiator decides the format for a request in strict priority order:
// an explicit query parameter, an explicit path-extension suffix, then
// quality-weighted matching of the Accept, Accept-Charset, Accept-Language
// and Accept-Encoding headers against the table's variants. Unknown
// explicit selections fall through silently to the next rule. A request
// that matches nothing yields the empty format name, which is not an
// error.
//
// Size-based variant selection is not supported: every variant reports
// size zero. Content-Encoding is never negotiated automatically.
package negotiate
