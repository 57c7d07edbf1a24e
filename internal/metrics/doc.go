// Package metrics defines the Prometheus metrics exported by the photoflow
// pipeline daemon.
//
// Metrics are registered at package load via promauto and cover pipeline
// runs, thumbnail generation, the job queue, database queries, edit-session
// commits, and the orphaned-file sweeper. InitializeMetrics pre-populates
// expected label combinations so series exist from the first scrape, and
// Collector periodically refreshes asset-status and tag-count gauges from
// the database.
package metrics
