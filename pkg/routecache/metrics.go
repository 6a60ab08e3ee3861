package routecache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors of one cache. A nil *metrics
// records nothing.
type metrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	shared        prometheus.Counter
	invalidations prometheus.Counter
	scanDuration  prometheus.Histogram
}

func newMetrics(o options) *metrics {
	if o.registry == nil {
		return nil
	}

	factory := promauto.With(o.registry)
	labels := prometheus.Labels{"cache": o.name}

	return &metrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "routecache",
			Name:        "hits_total",
			Help:        "Scans served from the cache",
			ConstLabels: labels,
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "routecache",
			Name:        "misses_total",
			Help:        "Scans not found in the cache",
			ConstLabels: labels,
		}),
		shared: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "routecache",
			Name:        "shared_total",
			Help:        "Scans that joined a scan already in flight",
			ConstLabels: labels,
		}),
		invalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "routecache",
			Name:        "invalidations_total",
			Help:        "Cache entries removed by Invalidate",
			ConstLabels: labels,
		}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   o.namespace,
			Subsystem:   "routecache",
			Name:        "scan_duration_seconds",
			Help:        "Filesystem scan duration in seconds",
			ConstLabels: labels,
			Buckets:     o.buckets,
		}),
	}
}

func (m *metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *metrics) join() {
	if m != nil {
		m.shared.Inc()
	}
}

func (m *metrics) invalidated() {
	if m != nil {
		m.invalidations.Inc()
	}
}

func (m *metrics) observe(d time.Duration) {
	if m != nil {
		m.scanDuration.Observe(d.Seconds())
	}
}
