package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics
var (
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_pipeline_runs_total",
			Help: "Total number of asset processing runs by outcome",
		},
		[]string{"outcome"}, // "success", "aborted", "failure"
	)

	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photoflow_pipeline_run_duration_seconds",
			Help:    "End-to-end duration of a single asset processing run",
			Buckets: prometheus.DefBuckets,
		},
	)

	PipelineAssetsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photoflow_pipeline_assets_by_status",
			Help: "Number of assets currently in each processing status",
		},
		[]string{"status"},
	)

	TagsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photoflow_tags_total",
			Help: "Number of distinct tags in the library",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_thumbnail_generations_total",
			Help: "Total number of thumbnail generations by status",
		},
		[]string{"status"}, // "success", "error"
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photoflow_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Job queue metrics
var (
	JobsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_jobs_enqueued_total",
			Help: "Total number of jobs enqueued by kind",
		},
		[]string{"kind"},
	)

	JobRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_job_retries_total",
			Help: "Total number of job retries scheduled by kind",
		},
		[]string{"kind"},
	)

	JobQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photoflow_job_queue_depth",
			Help: "Number of jobs currently waiting in the queue",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photoflow_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Editor metrics
var (
	EditCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_edit_commits_total",
			Help: "Total number of edit-session commits by mode",
		},
		[]string{"mode"}, // "overwrite", "new"
	)
)

// Sweeper metrics
var (
	SweeperRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoflow_sweeper_runs_total",
			Help: "Total number of orphaned-file sweep runs",
		},
	)

	SweeperFilesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoflow_sweeper_files_removed_total",
			Help: "Total number of orphaned files removed by the sweeper",
		},
	)
)
