// Package pipeline orchestrates asset ingestion.
//
// Process drives one asset through pending → processing → completed,
// generating its thumbnail, extracting metadata, and folding inferred
// tags into the tag store. Thumbnail failures fail the run; metadata
// extraction is best-effort and never does. A failed run leaves the
// asset in the failed state and returns a retryable error so the job
// runner can schedule another attempt; a run for an asset that no
// longer exists returns a permanent error and touches nothing.
//
// Runs are idempotent: re-entering processing, overwriting metadata,
// and find-or-create tag linking all tolerate a duplicate delivery of
// the same job.
package pipeline
