// Package metrics records pipeline counters for the node-exporter textfile
// collector. Each run writes a fresh snapshot; nothing is served over HTTP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

const namespace = "storegeo"

// Recorder holds the pipeline metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	lookups         *prometheus.CounterVec
	failures        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	searches        *prometheus.CounterVec
	addresses       prometheus.Gauge
}

// New creates the metrics and registers them on reg.
func New(reg prometheus.Registerer) *Recorder {
	m := &Recorder{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_lookups_total",
			Help:      "Addresses resolved, by provenance (cached, geocoded, failed)",
		}, []string{"provenance"}),

		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_failures_total",
			Help:      "Failed geocode lookups, by reason",
		}, []string{"reason"}),

		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_request_duration_seconds",
			Help:      "Geocoding provider request duration",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collect_searches_total",
			Help:      "Search term submissions, by outcome (ok, failed)",
		}, []string{"outcome"}),

		addresses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collect_addresses",
			Help:      "Distinct addresses found by the last collect run",
		}),
	}

	reg.MustRegister(
		m.lookups, m.failures, m.requestDuration,
		m.searches, m.addresses,
	)
	return m
}

// Lookup counts one resolved address.
func (m *Recorder) Lookup(provenance string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(provenance).Inc()
}

// Failure counts one failed lookup.
func (m *Recorder) Failure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

// ObserveRequest records the duration of one provider request.
func (m *Recorder) ObserveRequest(d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.Observe(d.Seconds())
}

// Search counts one search term submission.
func (m *Recorder) Search(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.searches.WithLabelValues(outcome).Inc()
}

// SetAddresses records the size of the collected address set.
func (m *Recorder) SetAddresses(n int) {
	if m == nil {
		return
	}
	m.addresses.Set(float64(n))
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format. An empty path is a no-op.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return eris.Wrapf(err, "metrics: write textfile %s", path)
	}
	return nil
}
