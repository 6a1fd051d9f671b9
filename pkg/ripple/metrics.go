package ripple

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "ripple").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for trigger fan-out.
	// Default: 0, 1, 2, 5, 10, 25, 100, 500.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus instrumentation.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the fan-out histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "ripple",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     []float64{0, 1, 2, 5, 10, 25, 100, 500},
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for the reactive runtime.
type metrics struct {
	effectRuns         prometheus.Counter
	triggersTotal      prometheus.Counter
	triggerFanout      prometheus.Histogram
	queueJobs          prometheus.Counter
	queueFlushes       prometheus.Counter
	flushJobs          prometheus.Histogram
	computedRecomputes prometheus.Counter
}

// globalMetrics is the singleton metrics instance.
// Created on the first call to EnableMetrics; all record helpers are no-ops
// until then, so the runtime carries no instrumentation cost by default.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect executions",
			ConstLabels: config.ConstLabels,
		}),

		triggersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "triggers_total",
			Help:        "Total number of dependency triggers dispatched",
			ConstLabels: config.ConstLabels,
		}),

		triggerFanout: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "trigger_fanout",
			Help:        "Number of effects notified per trigger",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		queueJobs: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "queue_jobs_total",
			Help:        "Total number of jobs enqueued for deferred execution",
			ConstLabels: config.ConstLabels,
		}),

		queueFlushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "queue_flushes_total",
			Help:        "Total number of queue flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_jobs",
			Help:        "Number of jobs run per queue flush",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		computedRecomputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computed_recomputes_total",
			Help:        "Total number of computed value recomputations",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// EnableMetrics turns on Prometheus instrumentation for the reactive
// runtime. Safe to call more than once; only the first call registers.
//
// Metrics collected:
//   - ripple_effect_runs_total: Counter of effect executions
//   - ripple_triggers_total: Counter of dispatched triggers
//   - ripple_trigger_fanout: Histogram of effects notified per trigger
//   - ripple_queue_jobs_total: Counter of enqueued jobs
//   - ripple_queue_flushes_total: Counter of queue flushes
//   - ripple_flush_jobs: Histogram of jobs run per flush
//   - ripple_computed_recomputes_total: Counter of computed recomputations
//
// Example:
//
//	ripple.EnableMetrics(ripple.WithNamespace("myapp"))
//	http.Handle("/metrics", promhttp.Handler())
func EnableMetrics(opts ...MetricsOption) {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
}

func recordEffectRun() {
	if globalMetrics != nil {
		globalMetrics.effectRuns.Inc()
	}
}

func recordTrigger(fanout int) {
	if globalMetrics != nil {
		globalMetrics.triggersTotal.Inc()
		globalMetrics.triggerFanout.Observe(float64(fanout))
	}
}

func recordQueueJob() {
	if globalMetrics != nil {
		globalMetrics.queueJobs.Inc()
	}
}

func recordQueueFlush(jobs int) {
	if globalMetrics != nil {
		globalMetrics.queueFlushes.Inc()
		globalMetrics.flushJobs.Observe(float64(jobs))
	}
}

func recordComputedRecompute() {
	if globalMetrics != nil {
		globalMetrics.computedRecomputes.Inc()
	}
}
