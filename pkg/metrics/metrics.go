// Package metrics owns the service's prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg             *prometheus.Registry
	OrdersCreated   prometheus.Counter
	OrdersPublished prometheus.Counter
	PublishFailures prometheus.Counter
	PublishLatency  prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_created_total"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_published_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "order_publish_failures_total"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_publish_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(created, published, failures, latency)
	return &Registry{
		reg:             r,
		OrdersCreated:   created,
		OrdersPublished: published,
		PublishFailures: failures,
		PublishLatency:  latency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
