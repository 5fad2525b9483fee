// Package observability exports roster metrics to Prometheus.
package observability

import (
	"net/http"
	"time"

	"github.com/hupe1980/roster"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements roster.MetricsCollector.
type PrometheusCollector struct {
	opLatency *prometheus.HistogramVec
	ops       *prometheus.CounterVec
	loaded    prometheus.Gauge
	finds     *prometheus.CounterVec
}

var _ roster.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector and registers its metrics
// with reg. namespace prefixes every metric name, e.g. "roster_students".
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	c := &PrometheusCollector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of durable store operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total durable store operations",
		}, []string{"op", "status"}),
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_records",
			Help:      "Records in the index after the last load",
		}),
		finds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finds_total",
			Help:      "Index lookups by result",
		}, []string{"result"}),
	}

	reg.MustRegister(c.opLatency, c.ops, c.loaded, c.finds)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *PrometheusCollector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
	c.ops.WithLabelValues(op, s).Inc()
}

// RecordLoad implements roster.MetricsCollector.
func (c *PrometheusCollector) RecordLoad(count int, d time.Duration, err error) {
	c.observe("load", d, err)
	c.loaded.Set(float64(count))
}

// RecordAdd implements roster.MetricsCollector.
func (c *PrometheusCollector) RecordAdd(d time.Duration, err error) { c.observe("add", d, err) }

// RecordUpdate implements roster.MetricsCollector.
func (c *PrometheusCollector) RecordUpdate(d time.Duration, err error) { c.observe("update", d, err) }

// RecordDelete implements roster.MetricsCollector.
func (c *PrometheusCollector) RecordDelete(d time.Duration, err error) { c.observe("delete", d, err) }

// RecordFind implements roster.MetricsCollector.
func (c *PrometheusCollector) RecordFind(hit bool) {
	if hit {
		c.finds.WithLabelValues("hit").Inc()
		return
	}
	c.finds.WithLabelValues("miss").Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
