// Package metrics exposes Prometheus counters for HTTP traffic, submissions and mail sends.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/fundintake/internal/application"
)

const namespace = "fundintake"

// Compile-time interface satisfaction check.
var _ application.Observer = (*Registry)(nil)

// Registry owns a private Prometheus registry with HTTP, submission, mail and
// Go runtime collectors.
type Registry struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	inFlight        prometheus.Gauge
	submissions     *prometheus.CounterVec
	mailSends       *prometheus.CounterVec
}

// NewRegistry creates a Registry with every collector registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Form submissions by outcome",
		}, []string{"outcome"}),
		mailSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_sends_total",
			Help:      "Mail delivery attempts by transport and result",
		}, []string{"transport", "result"}),
	}

	r.registry.MustRegister(
		r.requestDuration,
		r.requestsTotal,
		r.inFlight,
		r.submissions,
		r.mailSends,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Gatherer returns the underlying prometheus.Gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveHTTP records one finished request. path should be the route pattern,
// not the raw URL, to keep label cardinality bounded.
func (r *Registry) ObserveHTTP(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	r.requestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())
	r.requestsTotal.WithLabelValues(method, path, statusStr).Inc()
}

// IncInFlight marks a request as started.
func (r *Registry) IncInFlight() {
	r.inFlight.Inc()
}

// DecInFlight marks a request as finished.
func (r *Registry) DecInFlight() {
	r.inFlight.Dec()
}

// SubmissionProcessed implements application.Observer.
func (r *Registry) SubmissionProcessed(outcome string) {
	r.submissions.WithLabelValues(outcome).Inc()
}

// MailSent implements application.Observer.
func (r *Registry) MailSent(transport string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	r.mailSends.WithLabelValues(transport, result).Inc()
}
