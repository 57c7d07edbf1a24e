// Package sweeper removes files from the storage root that no asset
// record references.
//
// Orphans appear when an asset row is deleted without its blobs, or
// when a crashed run left partial output behind. The sweep walks the
// storage tree, diffs it against the database's known paths, and
// deletes unreferenced files older than a grace period. The grace
// period keeps the sweep from racing freshly dropped files that the
// ingest watcher has not recorded yet.
package sweeper
