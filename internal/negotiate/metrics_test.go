package negotiate

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMetrics_Singleton(t *testing.T) {
	t.Parallel()

	m1 := GetMetrics()
	m2 := GetMetrics()

	require.NotNil(t, m1)
	assert.Same(t, m1, m2)
}

func TestMetrics_RecordDecision(t *testing.T) {
	m := GetMetrics()

	tests := []struct {
		name     string
		decision Decision
		source   string
		format   string
	}{
		{"parameter", Decision{Format: "html", Source: SourceParameter}, "parameter", "html"},
		{"extension", Decision{Format: "xml", Source: SourceExtension}, "extension", "xml"},
		{"header", Decision{Format: "json", Source: SourceHeader}, "header", "json"},
		{"none", Decision{}, "none", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(m.negotiationsTotal.WithLabelValues(tt.source, tt.format))
			m.RecordDecision(tt.decision)
			after := testutil.ToFloat64(m.negotiationsTotal.WithLabelValues(tt.source, tt.format))

			assert.InDelta(t, before+1, after, 1e-9)
		})
	}
}
