// Package prometheus records ragdoc service metrics with Prometheus.
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/ragdoc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ragdoc"

// Metrics holds the collectors shared by the decorators in this package.
type Metrics struct {
	Registry *prometheus.Registry

	Fetches        *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	FetchBytes     prometheus.Counter
	EmbedRequests  *prometheus.CounterVec
	EmbedTexts     prometheus.Counter
	EmbedDuration  prometheus.Histogram
	IndexOps       *prometheus.CounterVec
	IndexDuration  *prometheus.HistogramVec
	Generations    *prometheus.CounterVec
	GenerationTime prometheus.Histogram
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fetches_total",
			Help: "Page fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "fetch_duration_seconds",
			Help:    "Page fetch latency.",
			Buckets: prometheus.DefBuckets,
		}),
		FetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "fetch_bytes_total",
			Help: "HTML bytes fetched.",
		}),
		EmbedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "embed_requests_total",
			Help: "Embedding requests by outcome.",
		}, []string{"outcome"}),
		EmbedTexts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "embed_texts_total",
			Help: "Texts sent for embedding.",
		}),
		EmbedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "embed_duration_seconds",
			Help:    "Embedding request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		IndexOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "index_operations_total",
			Help: "Vector index calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		IndexDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "index_operation_duration_seconds",
			Help:    "Vector index call latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "generations_total",
			Help: "Language model completions by outcome.",
		}, []string{"outcome"}),
		GenerationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "generation_duration_seconds",
			Help:    "Language model completion latency.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Fetches, m.FetchDuration, m.FetchBytes,
		m.EmbedRequests, m.EmbedTexts, m.EmbedDuration,
		m.IndexOps, m.IndexDuration,
		m.Generations, m.GenerationTime,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// outcome labels an error by its application code.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return ragdoc.ErrorCode(err)
}

func since(begin time.Time) float64 {
	return time.Since(begin).Seconds()
}
