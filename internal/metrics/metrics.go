/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package metrics exposes Prometheus metrics for page rendering.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one service instance on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	items    *prometheus.CounterVec
	fetch    *prometheus.HistogramVec
}

// New registers the dashboard collectors plus the Go and process collectors.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_requests_total",
			Help:      "Page requests by page and HTTP status.",
		}, []string{"page", "status"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_items_rendered_total",
			Help:      "Items rendered or exported by page.",
		}, []string{"page"}),
		fetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "datasource_fetch_seconds",
			Help:      "Time spent reading items from a datasource.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"page", "outcome"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.items,
		m.fetch,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch records the duration of one datasource read.
func (m *Metrics) ObserveFetch(page string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetch.WithLabelValues(page, outcome).Observe(elapsed.Seconds())
}

// ObserveItems counts rendered items.
func (m *Metrics) ObserveItems(page string, n int) {
	m.items.WithLabelValues(page).Add(float64(n))
}

// ObserveRequest counts one HTTP request for page.
func (m *Metrics) ObserveRequest(page string, status int) {
	m.requests.WithLabelValues(page, strconv.Itoa(status)).Inc()
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
