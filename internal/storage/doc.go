// Package storage provides the local filesystem blob store backing the
// photo library.
//
// A Store is rooted at a single directory and hands out paths, readers,
// and writers for stored originals and their thumbnails. All names are
// resolved relative to the root and are rejected if they would escape
// it, so callers can pass database-recorded relative paths without
// further validation.
//
// Writes go through a temp file in the destination directory followed
// by a rename, so a crashed write never leaves a truncated blob at the
// final name.
package storage
