package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{"success", "aborted", "failure"} {
		PipelineRunsTotal.WithLabelValues(outcome)
	}

	for _, status := range []string{"pending", "processing", "completed", "failed"} {
		PipelineAssetsByStatus.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}

	for _, kind := range []string{"process", "thumbnail", "metadata"} {
		JobsEnqueuedTotal.WithLabelValues(kind)
		JobRetriesTotal.WithLabelValues(kind)
	}

	for _, op := range []string{"initialize_schema", "create_asset", "get_asset",
		"update_status", "apply_metadata", "update_content", "set_thumbnail",
		"get_or_create_tag", "link_exists", "create_link", "tags_for_asset",
		"stored_paths", "count_assets_by_status", "list_by_status",
		"count_tags"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, mode := range []string{"overwrite", "as_new"} {
		EditCommitsTotal.WithLabelValues(mode)
	}
}
