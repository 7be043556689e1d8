package negotiate

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for negotiation decisions.
type Metrics struct {
	negotiationsTotal *prometheus.CounterVec
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// GetMetrics returns the singleton negotiation metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			negotiationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "gateway",
					Subsystem: "negotiate",
					Name:      "negotiations_total",
					Help:      "Total number of format negotiations by source rule and result",
				},
				[]string{"source", "format"},
			),
		}
	})
	return metricsInstance
}

// RecordDecision records one negotiation decision.
func (m *Metrics) RecordDecision(d Decision) {
	source := "none"
	switch d.Source {
	case SourceParameter:
		source = "parameter"
	case SourceExtension:
		source = "extension"
	case SourceHeader:
		source = "header"
	}

	format := d.Format
	if format == "" {
		format = "none"
	}

	m.negotiationsTotal.WithLabelValues(source, format).Inc()
}
