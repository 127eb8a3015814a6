// Package metrics provides Prometheus metrics for warehouse ingestion and search.
//
// The CLI is short-lived, so metrics are not served over HTTP. They are
// written in the Prometheus text format to a file that a node_exporter
// textfile collector can pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
)

const defaultNamespace = "resume_warehouse"

// Recorder holds the warehouse metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	ingested       *prometheus.CounterVec
	issues         *prometheus.CounterVec
	ingestDuration prometheus.Histogram
	qualityScore   prometheus.Histogram
	llmRetries     prometheus.Counter
	searches       prometheus.Counter
	searchDuration prometheus.Histogram
	candidates     prometheus.Gauge
}

// Option configures a Recorder.
type Option func(*options)

type options struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the namespace prefix of every metric.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		if namespace != "" {
			o.namespace = namespace
		}
	}
}

// WithDurationBuckets sets the histogram buckets of the duration metrics, in seconds.
func WithDurationBuckets(buckets []float64) Option {
	return func(o *options) {
		if len(buckets) > 0 {
			o.buckets = buckets
		}
	}
}

// New creates a Recorder on its own registry.
func New(opts ...Option) *Recorder {
	o := options{
		namespace: defaultNamespace,
		buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	}
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Recorder{
		registry: reg,
		ingested: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "resumes_ingested_total",
			Help:      "Resumes processed, by outcome status",
		}, []string{"status"}),
		issues: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "validation_issues_total",
			Help:      "Validation issues found, by severity",
		}, []string{"severity"}),
		ingestDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time to ingest one resume",
			Buckets:   o.buckets,
		}),
		qualityScore: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "quality_score",
			Help:      "Quality score of ingested candidates",
			Buckets:   []float64{50, 60, 70, 80, 90, 100},
		}),
		llmRetries: auto.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "llm_rate_limit_retries_total",
			Help:      "LLM calls retried after a rate limit",
		}),
		searches: auto.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "searches_total",
			Help:      "Search queries executed",
		}),
		searchDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "search_duration_seconds",
			Help:      "Time to answer a search query",
			Buckets:   prometheus.DefBuckets,
		}),
		candidates: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: o.namespace,
			Name:      "candidates",
			Help:      "Candidates stored in the warehouse",
		}),
	}
}

// Ensure Recorder observes ingestion and search.
var (
	_ driven.IngestObserver = (*Recorder)(nil)
	_ driven.SearchObserver = (*Recorder)(nil)
)

// ObserveIngest records one ingestion outcome.
func (r *Recorder) ObserveIngest(o domain.IngestOutcome) {
	if r == nil {
		return
	}
	r.ingested.WithLabelValues(string(o.Status)).Inc()
	r.ingestDuration.Observe(o.Duration.Seconds())

	if v := o.Validation; v != nil {
		r.issues.WithLabelValues(domain.SeverityCritical.String()).Add(float64(len(v.Issues.Critical)))
		r.issues.WithLabelValues(domain.SeverityFormatting.String()).Add(float64(len(v.Issues.Formatting)))
		r.issues.WithLabelValues(domain.SeverityWarning.String()).Add(float64(len(v.Issues.Warning)))
		if o.Status == domain.IngestStatusIngested {
			r.qualityScore.Observe(float64(v.QualityScore))
		}
	}
}

// IncRateLimitRetry counts one retried LLM call.
func (r *Recorder) IncRateLimitRetry() {
	if r == nil {
		return
	}
	r.llmRetries.Inc()
}

// ObserveSearch records one search query.
func (r *Recorder) ObserveSearch(d time.Duration) {
	if r == nil {
		return
	}
	r.searches.Inc()
	r.searchDuration.Observe(d.Seconds())
}

// SetCandidates records the number of stored candidates.
func (r *Recorder) SetCandidates(n int) {
	if r == nil {
		return
	}
	r.candidates.Set(float64(n))
}

// Gatherer exposes the registry, for tests and custom exporters.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteFile writes the metrics to path in the Prometheus text format.
// The file is replaced atomically.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.Gatherer())
}
