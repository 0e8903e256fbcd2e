// Package metrics exposes Prometheus collectors for the editor, the document
// worker and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	registry *prometheus.Registry

	// Network
	Nodes         prometheus.Gauge
	Pipes         prometheus.Gauge
	EventsTotal   *prometheus.CounterVec
	RejectedPipes *prometheus.CounterVec

	// Document jobs
	JobsTotal   *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with every collector registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(r.registry)

	r.Nodes = factory.NewGauge(prometheus.GaugeOpts{
		Name: "gasmap_network_nodes",
		Help: "Number of nodes in the network",
	})
	r.Pipes = factory.NewGauge(prometheus.GaugeOpts{
		Name: "gasmap_network_pipes",
		Help: "Number of committed pipes in the network",
	})
	r.EventsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gasmap_editor_events_total",
		Help: "Editor events handled, by event",
	}, []string{"event"})
	r.RejectedPipes = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gasmap_editor_rejected_pipes_total",
		Help: "Drawn pipes rejected at commit, by reason",
	}, []string{"reason"})

	r.JobsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gasmap_document_jobs_total",
		Help: "Document import and export jobs, by kind and status",
	}, []string{"kind", "status"})
	r.JobDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gasmap_document_job_duration_seconds",
		Help:    "Document job duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"kind"})

	r.HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gasmap_http_requests_total",
		Help: "HTTP requests, by method, route and status",
	}, []string{"method", "route", "status"})
	r.HTTPRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gasmap_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// EventHandled counts one editor event.
func (r *Registry) EventHandled(name string) {
	r.EventsTotal.WithLabelValues(name).Inc()
}

// PipeRejected counts a pipe refused at commit.
func (r *Registry) PipeRejected(reason string) {
	r.RejectedPipes.WithLabelValues(reason).Inc()
}

// Topology records the current network size.
func (r *Registry) Topology(nodes, pipes int) {
	r.Nodes.Set(float64(nodes))
	r.Pipes.Set(float64(pipes))
}

// JobFinished records a finished document job.
func (r *Registry) JobFinished(kind string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.JobsTotal.WithLabelValues(kind, status).Inc()
	r.JobDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
