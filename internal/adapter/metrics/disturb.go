package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DisturbMetrics records the activity of the disturb engine. It implements
// domain.DisturbRecorder.
type DisturbMetrics struct {
	Firings        *prometheus.CounterVec
	Disturbances   *prometheus.CounterVec
	ScrambledRunes prometheus.Histogram
	Restores       *prometheus.CounterVec
	NextDelay      prometheus.Histogram
}

// NewDisturbMetrics creates and registers disturb engine metrics on the given registry.
func NewDisturbMetrics(reg prometheus.Registerer) *DisturbMetrics {
	m := &DisturbMetrics{
		Firings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "firings_total",
			Help:      "Total number of service firings, by member index.",
		}, []string{"member"}),
		Disturbances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "element",
			Name:      "disturbances_total",
			Help:      "Total number of scrambles, by element.",
		}, []string{"element"}),
		ScrambledRunes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "element",
			Name:      "scrambled_runes",
			Help:      "Number of runes replaced per scramble.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Restores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "element",
			Name:      "restores_total",
			Help:      "Total number of restores, by element.",
		}, []string{"element"}),
		NextDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "next_delay_seconds",
			Help:      "Delay until the next scheduled firing in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	reg.MustRegister(m.Firings, m.Disturbances, m.ScrambledRunes, m.Restores, m.NextDelay)
	return m
}

func (m *DisturbMetrics) Fired(member int) {
	m.Firings.WithLabelValues(strconv.Itoa(member)).Inc()
}

func (m *DisturbMetrics) Scrambled(element string, runes int) {
	m.Disturbances.WithLabelValues(element).Inc()
	m.ScrambledRunes.Observe(float64(runes))
}

func (m *DisturbMetrics) Restored(element string) {
	m.Restores.WithLabelValues(element).Inc()
}

func (m *DisturbMetrics) Scheduled(delay time.Duration) {
	m.NextDelay.Observe(delay.Seconds())
}
