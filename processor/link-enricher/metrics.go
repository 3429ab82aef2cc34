package linkenricher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "semtimeline"

// Resolution outcomes, used as the "outcome" label.
const (
	OutcomeText          = "text"
	OutcomeEnriched      = "enriched"
	OutcomeNoMetadata    = "no_metadata"
	OutcomeRedirectLimit = "redirect_limit"
	OutcomeNetworkError  = "network_error"
)

// Metrics records reference resolution counts and fetch latency. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	resolutions   *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reference_resolutions_total",
			Help:      "Reference resolutions by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "reference_fetch_duration_seconds",
			Help:      "Time spent fetching reference pages, redirects included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.resolutions, m.fetchDuration)
	}
	return m
}

// observe records one resolution. Plain-text references carry no duration.
func (m *Metrics) observe(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
	if outcome != OutcomeText {
		m.fetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}
