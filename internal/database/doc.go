// Package database provides SQLite database operations for the photoflow
// pipeline.
//
// It handles storage and retrieval of:
//   - Asset records (original file, dimensions, processing status)
//   - Extracted EXIF metadata fields
//   - Tags and asset-tag links
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization. Tag lookup is keyed on a
// normalized (trimmed, lowercased) name, and asset-tag links are created
// with an explicit exists-check rather than an upsert so that duplicate
// pipeline runs stay idempotent.
package database
