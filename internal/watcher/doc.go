// Package watcher ingests new photos dropped into the storage root.
//
// It watches the originals tree with fsnotify and, for every new image
// file that the database does not know yet, creates a pending asset
// and hands it to the job runner for processing. A startup scan
// catches files that arrived while the process was down. Thumbnails,
// hidden files, and in-progress temp writes are ignored.
package watcher
