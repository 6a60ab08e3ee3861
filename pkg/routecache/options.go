package routecache

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "github.com/vango-dev/fsroutes/pkg/routecache"

// Option configures a Cache.
type Option func(*options)

type options struct {
	name      string
	namespace string
	registry  prometheus.Registerer
	buckets   []float64
	tracer    trace.Tracer
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		name:      "default",
		namespace: "fsroutes",
		buckets:   prometheus.DefBuckets,
		logger:    slog.Default(),
	}
}

// WithName sets the cache name. It is used as the "cache" label on metrics
// and as a log attribute.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithMetrics registers the cache metrics with reg. Without it the cache
// records no metrics.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithNamespace sets the metrics namespace (default: "fsroutes").
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithBuckets sets the scan duration histogram buckets.
// Default: prometheus.DefBuckets
func WithBuckets(buckets []float64) Option {
	return func(o *options) {
		o.buckets = buckets
	}
}

// WithTracer sets the tracer used for scan spans.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithLogger sets the logger for scan and invalidation events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func (o *options) resolveTracer() trace.Tracer {
	if o.tracer != nil {
		return o.tracer
	}
	return otel.Tracer(defaultTracerName)
}
