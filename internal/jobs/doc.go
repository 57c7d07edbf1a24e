// Package jobs provides the in-process job queue that drives photo
// ingestion, thumbnail regeneration, and metadata re-parsing.
//
// The queue is deliberately small: a buffered channel, a fixed worker
// pool, and timer-based redelivery. Jobs are retried with a fixed delay
// until the retry budget runs out; handlers mark errors that retrying
// cannot fix with Permanent so the job fails immediately. Delivery is
// at-least-once, so handlers must tolerate reprocessing an asset that
// already made partial progress.
//
// There is no persistence. Jobs pending at shutdown are dropped, which
// is acceptable because ingestion can be re-triggered by re-scanning
// the storage root.
package jobs
