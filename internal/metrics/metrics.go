// Package metrics provides Prometheus instrumentation for the notes server.
//
// Collectors live in a dedicated registry so /metrics only shows notes
// metrics.
package metrics

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics holds the collectors of the notes server.
type Metrics struct {
	Registry *prometheus.Registry

	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	NotesAddedTotal     prometheus.Counter
	NotesRemovedTotal   prometheus.Counter
}

// New creates and registers all collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_grpc_requests_total",
			Help: "Total number of gRPC requests.",
		}, []string{"method", "code"}),

		GRPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notes_grpc_request_duration_seconds",
			Help:    "gRPC request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "code"}),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_http_requests_total",
			Help: "Total number of gateway HTTP requests.",
		}, []string{"method", "status"}),

		NotesAddedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notes_added_total",
			Help: "Total number of notes created.",
		}),

		NotesRemovedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notes_removed_total",
			Help: "Total number of notes removed.",
		}),
	}

	reg.MustRegister(
		m.GRPCRequestsTotal,
		m.GRPCRequestDuration,
		m.HTTPRequestsTotal,
		m.NotesAddedTotal,
		m.NotesRemovedTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// UnaryServerInterceptor records count and latency per method and code.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		method := path.Base(info.FullMethod)
		code := status.Code(err).String()
		m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
		m.GRPCRequestDuration.WithLabelValues(method, code).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// ObserveHTTP counts a finished gateway request.
func (m *Metrics) ObserveHTTP(method string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// NoteAdded counts a created note.
func (m *Metrics) NoteAdded() {
	m.NotesAddedTotal.Inc()
}

// NoteRemoved counts a removed note.
func (m *Metrics) NoteRemoved() {
	m.NotesRemovedTotal.Inc()
}
