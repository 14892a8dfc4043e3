// Package metrics provides Prometheus metrics for the desksentry loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors published at /metrics.
type Metrics struct {
	Ticks         prometheus.Counter
	Triggers      prometheus.Counter
	Sprays        prometheus.Counter
	SprayFailures prometheus.Counter
	DetectorGaps  prometheus.Counter
	SprayDuration prometheus.Histogram
	DNDActive     prometheus.Gauge
}

// New registers the collectors on the given registerer and returns them.
// Pass prometheus.DefaultRegisterer in the binary; tests use their own
// registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "desksentry",
			Name:      "ticks_total",
			Help:      "Orchestrator ticks processed.",
		}),
		Triggers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "desksentry",
			Name:      "triggers_total",
			Help:      "Trigger decisions emitted by the state machine.",
		}),
		Sprays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "desksentry",
			Name:      "sprays_total",
			Help:      "Spray sequences completed successfully.",
		}),
		SprayFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "desksentry",
			Name:      "spray_failures_total",
			Help:      "Spray sequences that reported a hardware failure.",
		}),
		DetectorGaps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "desksentry",
			Name:      "detector_gaps_total",
			Help:      "Ticks where the detector failed and was treated as an empty frame.",
		}),
		SprayDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "desksentry",
			Name:      "spray_duration_seconds",
			Help:      "Wall time of the full spray sequence.",
			Buckets:   prometheus.DefBuckets,
		}),
		DNDActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "desksentry",
			Name:      "dnd_active",
			Help:      "Whether the do-not-disturb flag currently gates to active (1) or not (0).",
		}),
	}
}
