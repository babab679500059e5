package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "resume_verifier"

// Metrics holds the Prometheus collectors for extraction calls and pipeline runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	extractionAttempts *prometheus.CounterVec
	extractionRetries  *prometheus.CounterVec
	extractionFailures *prometheus.CounterVec
	extractionLatency  *prometheus.HistogramVec
	stageDuration      *prometheus.HistogramVec
	runs               *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		extractionAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "extraction_attempts_total",
			Help:      "Structured extraction attempts by schema, provider and outcome.",
		}, []string{"schema", "provider", "outcome"}),
		extractionRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "extraction_retries_total",
			Help:      "Structured extraction retries by schema.",
		}, []string{"schema"}),
		extractionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "extraction_failures_total",
			Help:      "Structured extraction calls that failed, by schema and error kind.",
		}, []string{"schema", "kind"}),
		extractionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "extraction_duration_seconds",
			Help:      "Wall-clock duration of structured extraction calls including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"schema"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage durations by pipeline, stage and status.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"pipeline", "stage", "status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by pipeline and status.",
		}, []string{"pipeline", "status"}),
	}

	var err error
	if m.extractionAttempts, err = register(reg, m.extractionAttempts); err != nil {
		return nil, err
	}
	if m.extractionRetries, err = register(reg, m.extractionRetries); err != nil {
		return nil, err
	}
	if m.extractionFailures, err = register(reg, m.extractionFailures); err != nil {
		return nil, err
	}
	if m.extractionLatency, err = register(reg, m.extractionLatency); err != nil {
		return nil, err
	}
	if m.stageDuration, err = register(reg, m.stageDuration); err != nil {
		return nil, err
	}
	if m.runs, err = register(reg, m.runs); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing an identical collector registered earlier
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("failed to register metric: %w", err)
	}
	return c, nil
}

// ExtractionAttempt counts one provider call
func (m *Metrics) ExtractionAttempt(schema, provider, outcome string) {
	if m == nil {
		return
	}
	m.extractionAttempts.WithLabelValues(schema, provider, outcome).Inc()
}

// ExtractionRetry counts one retry
func (m *Metrics) ExtractionRetry(schema string) {
	if m == nil {
		return
	}
	m.extractionRetries.WithLabelValues(schema).Inc()
}

// ExtractionDone records the outcome of a whole extraction call; kind is empty on success
func (m *Metrics) ExtractionDone(schema, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.extractionLatency.WithLabelValues(schema).Observe(elapsed.Seconds())
	if kind != "" {
		m.extractionFailures.WithLabelValues(schema, kind).Inc()
	}
}

// StageDone records a stage duration
func (m *Metrics) StageDone(pipeline, stage, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(pipeline, stage, status).Observe(elapsed.Seconds())
}

// RunDone counts a finished pipeline run
func (m *Metrics) RunDone(pipeline, status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(pipeline, status).Inc()
}

// StartMetricsServer serves the gathered metrics on addr in the background
func StartMetricsServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	go func() {
		_ = server.ListenAndServe()
	}()
	return server
}
