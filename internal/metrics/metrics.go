// Package metrics exposes Prometheus metrics for the HTTP shell and the
// navigator.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackielii/spaview"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	navigations     *prometheus.CounterVec
	viewLoads       *prometheus.HistogramVec
	discarded       prometheus.Counter
}

var _ spaview.Observer = (*Metrics)(nil)

// New creates the collectors on a fresh registry. An empty namespace
// defaults to "spaview".
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "spaview"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "navigations_total",
			Help:      "Finished navigations by final phase.",
		}, []string{"phase"}),
		viewLoads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "view_load_seconds",
			Help:      "Deferred view load latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "result"}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "discarded_total",
			Help:      "Navigations whose views arrived after a newer navigation started.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.navigations, m.viewLoads, m.discarded,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so that fallback paths do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) NavigationStarted(*spaview.NavigationState) {}

func (m *Metrics) NavigationFinished(_ *spaview.NavigationState, phase spaview.Phase) {
	m.navigations.WithLabelValues(phase.String()).Inc()
}

func (m *Metrics) NavigationDiscarded(*spaview.NavigationState) {
	m.discarded.Inc()
}

func (m *Metrics) ViewLoaded(n *spaview.RouteNode, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.viewLoads.WithLabelValues(n.FullPath(), result).Observe(elapsed.Seconds())
}
