package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry   *prometheus.Registry
	analyses   *prometheus.CounterVec
	segments   *prometheus.CounterVec
	classify   *prometheus.HistogramVec
	apiLatency *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emotion_timeline_analyses_total",
			Help: "Timeline analyses by outcome.",
		}, []string{"outcome"}),
		segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emotion_timeline_segments_scored_total",
			Help: "Segments scored by classifier backend.",
		}, []string{"backend"}),
		classify: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emotion_timeline_classify_seconds",
			Help:    "Classifier call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emotion_timeline_http_request_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	m.registry.MustRegister(
		m.analyses, m.segments, m.classify, m.apiLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Nil receivers are valid everywhere so callers can run without metrics.

func (m *Metrics) ObserveAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveClassify(backend string, segments int, d time.Duration) {
	if m == nil {
		return
	}
	m.segments.WithLabelValues(backend).Add(float64(segments))
	m.classify.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *Metrics) ObserveAPICall(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiLatency.WithLabelValues(method, path, status).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
