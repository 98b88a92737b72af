package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricType selects the prometheus collector built for a Metric.
type MetricType string

const (
	CounterVec   MetricType = "counter_vec"
	HistogramVec MetricType = "histogram_vec"
	SummaryVec   MetricType = "summary_vec"
)

// LatencyBuckets are millisecond buckets for HTTP handlers and gateway calls. The upper
// end covers the default 15s gateway timeout plus the webhook redelivery window.
var LatencyBuckets = []float64{
	10, 25, 50, 100, 200, 300, 500,
	750, 1000, 1500, 2000, 3000,
	5000, 7500, 10000, 15000, 30000,
}

// Metric describes one collector: its name, help text, kind and label names.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            MetricType
	Args            []string
	// Buckets overrides LatencyBuckets for histograms.
	Buckets []float64
}

// NewMetric builds the collector for m under subsystem. It returns nil for an unknown Type.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case CounterVec:
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	case HistogramVec:
		buckets := m.Buckets
		if len(buckets) == 0 {
			buckets = LatencyBuckets
		}
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
			Buckets:   buckets,
		}, m.Args)
	case SummaryVec:
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	}
	return nil
}

// RefererKey is the request header used for the "ref" label of the HTTP metrics.
const RefererKey = "X-Referer"
