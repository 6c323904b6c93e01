// Package metrics provides Prometheus metrics collection for RacksDB.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/artpar/racksdb/core/db"
)

// DefaultNamespace prefixes the metric names.
const DefaultNamespace = "racksdb"

// Collector holds all Prometheus metrics for RacksDB.
type Collector struct {
	// Load metrics
	LoadsTotal   *prometheus.CounterVec
	LoadDuration prometheus.Histogram
	Objects      *prometheus.GaugeVec

	// Reload metrics
	Reloads      prometheus.Counter
	ReloadErrors prometheus.Counter
	LastReload   prometheus.Gauge
}

// New creates a new metrics collector registered with the default
// registerer.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer, DefaultNamespace)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer, namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Collector{
		LoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total number of database loads",
			},
			[]string{"result"},
		),
		LoadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Database load duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		Objects: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "objects",
				Help:      "Number of objects of each class in the last loaded database",
			},
			[]string{"class"},
		),

		Reloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Total number of database reloads",
			},
		),
		ReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reload_errors_total",
				Help:      "Total number of failed database reloads",
			},
		),
		LastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_reload_timestamp_seconds",
				Help:      "Unix timestamp of the last successful reload",
			},
		),
	}
}

// ObserveLoad records a finished load. The objects gauge only reflects
// successful loads.
func (c *Collector) ObserveLoad(stats db.LoadStats) {
	c.LoadDuration.Observe(stats.Duration.Seconds())
	if stats.Err != nil {
		c.LoadsTotal.WithLabelValues("error").Inc()
		return
	}
	c.LoadsTotal.WithLabelValues("success").Inc()

	c.Objects.Reset()
	for class, n := range stats.Objects {
		c.Objects.WithLabelValues(class).Set(float64(n))
	}
}

// RecordReload records the outcome of a reload.
func (c *Collector) RecordReload(at time.Time, err error) {
	c.Reloads.Inc()
	if err != nil {
		c.ReloadErrors.Inc()
		return
	}
	c.LastReload.Set(float64(at.Unix()))
}
