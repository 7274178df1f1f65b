package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/coursemate/internal/prereq"
	"github.com/jonathan/coursemate/internal/types"
)

// Outcome labels.
const (
	LookupOK     = "ok"
	LookupFailed = "failed"

	SubmissionOK    = "ok"
	SubmissionError = "error"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	submissionsTotal   *prometheus.CounterVec
	lookupsTotal       *prometheus.CounterVec
	submissionDuration prometheus.Histogram
	outstandingCourses prometheus.Histogram
	graphEdges         prometheus.Histogram
}

// NewMetrics creates and registers all collectors, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursemate_submissions_total",
				Help: "Number of resolve submissions by program and result.",
			},
			[]string{"program", "result"},
		),
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursemate_prereq_lookups_total",
				Help: "Number of prerequisite lookups by outcome.",
			},
			[]string{"outcome"},
		),
		submissionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coursemate_submission_duration_seconds",
				Help:    "Time taken to resolve a submission and assemble its graph.",
				Buckets: prometheus.DefBuckets,
			},
		),
		outstandingCourses: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coursemate_outstanding_courses",
				Help:    "Number of outstanding courses per submission.",
				Buckets: prometheus.LinearBuckets(0, 4, 10),
			},
		),
		graphEdges: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coursemate_graph_edges",
				Help:    "Number of prerequisite edges per assembled graph.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.submissionsTotal,
		m.lookupsTotal,
		m.submissionDuration,
		m.outstandingCourses,
		m.graphEdges,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLookup counts one lookup. Its signature matches prereq.Options.Observe.
func (m *Metrics) ObserveLookup(_ types.CourseCode, result prereq.Result) {
	outcome := LookupOK
	if !result.OK() {
		outcome = LookupFailed
	}
	m.lookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSubmission records a finished submission. result is SubmissionOK or
// SubmissionError; size histograms only see successful submissions.
func (m *Metrics) ObserveSubmission(program, result string, elapsed time.Duration, outstanding types.OutstandingRequirements, g types.Graph) {
	m.submissionsTotal.WithLabelValues(program, result).Inc()
	m.submissionDuration.Observe(elapsed.Seconds())
	if result == SubmissionOK {
		m.outstandingCourses.Observe(float64(len(outstanding.Flatten())))
		m.graphEdges.Observe(float64(len(g.Edges)))
	}
}

// InstrumentLookuper wraps a Lookuper so every lookup is counted.
func (m *Metrics) InstrumentLookuper(next prereq.Lookuper) prereq.Lookuper {
	return prereq.LookupFunc(func(ctx context.Context, course types.CourseCode) prereq.Result {
		result := next.Lookup(ctx, course)
		m.ObserveLookup(course, result)
		return result
	})
}
