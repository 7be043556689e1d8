package negotiate

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// acceptItem is one element of a parsed Accept-family header.
type acceptItem struct {
	value   string
	quality float64
}

// parseAcceptItems parses a comma-separated Accept-family header into
// values with quality factors.
// Example: "utf-8, iso-8859-1;q=0.5, *;q=0.1".
func parseAcceptItems(header string) []acceptItem {
	parts := strings.Split(header, ",")
	items := make([]acceptItem, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		item := acceptItem{quality: 1.0}

		segments := strings.Split(part, ";")
		item.value = strings.TrimSpace(segments[0])

		for _, segment := range segments[1:] {
			segment = strings.TrimSpace(segment)
			if strings.HasPrefix(segment, "q=") {
				if q, err := strconv.ParseFloat(strings.TrimPrefix(segment, "q="), 64); err == nil {
					item.quality = q
				}
			}
		}

		items = append(items, item)
	}
	return items
}

// qualityMediaType scores a variant media type against the parsed Accept
// header. The most specific matching range wins: exact match over
// "type/*" over "*/*". An absent header scores 1; no match scores 0.
func qualityMediaType(ranges []acceptItem, mediaType string) float64 {
	if len(ranges) == 0 || mediaType == "" {
		return 1.0
	}

	mainType := mediaType
	if idx := strings.IndexByte(mediaType, '/'); idx >= 0 {
		mainType = mediaType[:idx]
	}

	best := 0.0
	bestSpecificity := -1
	for _, r := range ranges {
		specificity := -1
		switch {
		case strings.EqualFold(r.value, mediaType):
			specificity = 2
		case strings.EqualFold(r.value, mainType+"/*"):
			specificity = 1
		case r.value == "*/*":
			specificity = 0
		}
		if specificity > bestSpecificity {
			bestSpecificity = specificity
			best = r.quality
		}
	}
	if bestSpecificity < 0 {
		return 0.0
	}
	return best
}

// qualityToken scores a charset or encoding attribute against a parsed
// token list. Variants without the attribute, and requests without the
// header, always score 1.
func qualityToken(items []acceptItem, value string) float64 {
	if value == "" || len(items) == 0 {
		return 1.0
	}
	wildcard := -1.0
	for _, item := range items {
		if strings.EqualFold(item.value, value) {
			return item.quality
		}
		if item.value == "*" {
			wildcard = item.quality
		}
	}
	if wildcard >= 0 {
		return wildcard
	}
	return 0.0
}

// unmatchedLanguageQuality is the floor score for a variant whose
// language matches none of the accepted ranges. A representation in the
// wrong language still beats no representation at all.
const unmatchedLanguageQuality = 0.001

// parseAcceptLanguage parses an Accept-Language header, canonicalizing
// each range through the language package so spellings like "EN-gb"
// compare equal to "en-GB".
func parseAcceptLanguage(header string) []acceptItem {
	items := parseAcceptItems(header)
	for i, item := range items {
		items[i].value = canonicalLanguage(item.value)
	}
	return items
}

// canonicalLanguage returns the canonical lowercase form of a language
// tag. The wildcard and unparseable tags are passed through lowercased.
func canonicalLanguage(tag string) string {
	if tag == "*" {
		return tag
	}
	if parsed, err := language.Parse(tag); err == nil {
		return strings.ToLower(parsed.String())
	}
	return strings.ToLower(tag)
}

// qualityLanguage scores a variant language against parsed Accept-Language
// ranges. A range matches exactly or as a prefix at a subtag boundary
// ("en" matches "en-gb").
func qualityLanguage(ranges []acceptItem, lang string) float64 {
	if lang == "" || len(ranges) == 0 {
		return 1.0
	}

	canonical := canonicalLanguage(lang)
	best := 0.0
	matched := false
	for _, r := range ranges {
		if r.value == "*" || r.value == canonical || strings.HasPrefix(canonical, r.value+"-") {
			matched = true
			if r.quality > best {
				best = r.quality
			}
		}
	}
	if !matched {
		return unmatchedLanguageQuality
	}
	return best
}

// negotiateHeaders runs quality-weighted negotiation of the table's
// variants against the request's Accept-family headers and returns the
// winning format name, or the empty string when nothing scores above
// zero. Scores follow the RFC 2295 appendix A form: the product of the
// source quality and the per-axis qualities, rounded to five places.
// Ties keep the first variant in name order.
func negotiateHeaders(variants []Variant, accept, acceptCharset, acceptLanguage, acceptEncoding string) string {
	if len(variants) == 0 {
		return ""
	}

	mediaRanges := parseAcceptItems(accept)
	charsets := parseAcceptItems(acceptCharset)
	encodings := parseAcceptItems(acceptEncoding)
	languages := parseAcceptLanguage(acceptLanguage)

	bestName := ""
	bestQuality := 0.0
	for _, v := range variants {
		q := v.Quality *
			qualityMediaType(mediaRanges, v.MediaType) *
			qualityToken(charsets, v.Charset) *
			qualityToken(encodings, v.Encoding) *
			qualityLanguage(languages, v.Language)
		q = math.Round(q*100000) / 100000

		if q > bestQuality {
			bestQuality = q
			bestName = v.Name
		}
	}
	return bestName
}
