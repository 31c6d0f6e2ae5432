// Package metrics exposes Prometheus metrics for report processing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fuelops/backend/internal/domain/fuel"
)

const namespace = "fuel"

// Submission results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder owns a private registry with the report counters.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Recorder struct {
	registry *prometheus.Registry

	reportsProcessed   prometheus.Counter
	unitsReconciled    prometheus.Counter
	skippedLines       prometheus.Counter
	calibrationMisses  prometheus.Counter
	reviewFlags        prometheus.Counter
	submissions        *prometheus.CounterVec
	submittedRows      prometheus.Counter
	submissionDuration prometheus.Histogram
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors attached.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		reportsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_processed_total",
			Help:      "Reports parsed and reconciled.",
		}),
		unitsReconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_reconciled_total",
			Help:      "Unit records reconciled across all reports.",
		}),
		skippedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_skipped_lines_total",
			Help:      "Report lines inside known sections that matched no pattern.",
		}),
		calibrationMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calibration_misses_total",
			Help:      "Units reconciled without a calibration table.",
		}),
		reviewFlags: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_flags_total",
			Help:      "Units whose sonding usage exceeded the review threshold.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Stock submissions by result.",
		}, []string{"result"}),
		submittedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submitted_rows_total",
			Help:      "Stock rows committed.",
		}),
		submissionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time spent storing a stock batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.reportsProcessed,
		r.unitsReconciled,
		r.skippedLines,
		r.calibrationMisses,
		r.reviewFlags,
		r.submissions,
		r.submittedRows,
		r.submissionDuration,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// RecordReport counts one processed report
func (r *Recorder) RecordReport(parsed *fuel.ParseResult, rec *fuel.Reconciliation) {
	r.reportsProcessed.Inc()
	if parsed != nil {
		r.skippedLines.Add(float64(parsed.Skipped))
	}
	if rec == nil {
		return
	}
	r.unitsReconciled.Add(float64(len(rec.Units)))
	r.reviewFlags.Add(float64(rec.Summary.ReviewCount))
	for _, w := range rec.Warnings {
		if w.Kind == fuel.WarningCalibrationMiss {
			r.calibrationMisses.Inc()
		}
	}
}

// RecordSubmission counts a submission attempt
func (r *Recorder) RecordSubmission(err error, rows int, elapsed time.Duration) {
	r.submissionDuration.Observe(elapsed.Seconds())
	if err != nil {
		r.submissions.WithLabelValues(ResultFailure).Inc()
		return
	}
	r.submissions.WithLabelValues(ResultSuccess).Inc()
	r.submittedRows.Add(float64(rows))
}

// Middleware records request counts and latency by matched route
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
