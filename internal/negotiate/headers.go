package negotiate

import "net/http"

// AddHeaders fills in representation headers for the named format on an
// existing header set. Headers already present are never overwritten, so
// the call is idempotent. Unknown names are a no-op. Content-Encoding is
// intentionally never set.
func (t *Table) AddHeaders(h http.Header, name string) {
	eff, ok := t.About(name)
	if !ok {
		return
	}
	addHeaders(h, eff)
}

// addHeaders fills absent Content-Type and Content-Language headers from
// effective format attributes.
func addHeaders(h http.Header, eff Format) {
	if eff.MediaType != "" && h.Get("Content-Type") == "" {
		contentType := eff.MediaType
		if eff.Charset != "" {
			contentType += "; charset=" + eff.Charset
		}
		h.Set("Content-Type", contentType)
	}
	if eff.Language != "" && h.Get("Content-Language") == "" {
		h.Set("Content-Language", eff.Language)
	}
}
