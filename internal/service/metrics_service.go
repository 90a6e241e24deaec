package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer,
// the stats cache, planning runs and background jobs.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	planningRuns    prometheus.Counter
	uncoveredCells  prometheus.Histogram
	commits         prometheus.Counter
	committedCells  prometheus.Counter
	skippedCells    prometheus.Counter
	jobResults      *prometheus.CounterVec
	importedRows    *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	planningRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitution_planning_runs_total",
		Help: "Number of automatic planning runs",
	})

	uncoveredCells := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "substitution_uncovered_cells",
		Help:    "Uncovered lesson hours left by a planning run",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
	})

	commits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitution_commits_total",
		Help: "Number of plans written to history",
	})

	committedCells := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitution_records_total",
		Help: "Substitution records written to history",
	})

	skippedCells := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitution_skipped_cells_total",
		Help: "Plan cells dropped at commit because they reference unknown teachers or hours",
	})

	jobResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "background_jobs_total",
		Help: "Finished background jobs by type and outcome",
	}, []string{"type", "status"})

	importedRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "table_rows_imported_total",
		Help: "Rows stored by table replacements and spreadsheet imports",
	}, []string{"table"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		planningRuns, uncoveredCells, commits, committedCells, skippedCells,
		jobResults, importedRows, goroutines,
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		planningRuns:    planningRuns,
		uncoveredCells:  uncoveredCells,
		commits:         commits,
		committedCells:  committedCells,
		skippedCells:    skippedCells,
		jobResults:      jobResults,
		importedRows:    importedRows,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObservePlanningRun counts an automatic planning run and its uncovered cells.
func (m *MetricsService) ObservePlanningRun(uncovered int) {
	if m == nil {
		return
	}
	m.planningRuns.Inc()
	m.uncoveredCells.Observe(float64(uncovered))
}

// ObserveCommit counts a commit with its written and skipped cells.
func (m *MetricsService) ObserveCommit(records, skipped int) {
	if m == nil {
		return
	}
	m.commits.Inc()
	m.committedCells.Add(float64(records))
	m.skippedCells.Add(float64(skipped))
}

// ObserveJob records the final outcome of a background job.
func (m *MetricsService) ObserveJob(jobType string, err error) {
	if m == nil {
		return
	}
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	m.jobResults.WithLabelValues(jobType, status).Inc()
}

// ObserveImport counts stored rows of a table.
func (m *MetricsService) ObserveImport(table string, rows int) {
	if m == nil {
		return
	}
	m.importedRows.WithLabelValues(table).Add(float64(rows))
}
