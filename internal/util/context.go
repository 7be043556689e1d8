package util

import "context"

// Context keys.
type ctxKey string

const (
	ctxKeyFormat ctxKey = "negotiate.format"
)

// ContextWithFormat adds the negotiated format name to the context.
// An empty name records that negotiation ran but chose nothing.
func ContextWithFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, ctxKeyFormat, format)
}

// FormatFromContext extracts the negotiated format name from context.
// It returns an empty string when no format was negotiated.
func FormatFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyFormat).(string); ok {
		return v
	}
	return ""
}

// HasFormat reports whether negotiation stored a result in the context,
// even an empty one.
func HasFormat(ctx context.Context) bool {
	_, ok := ctx.Value(ctxKeyFormat).(string)
	return ok
}
