// Command photoflow-edit applies edits to a stored asset from the
// command line.
//
// Transform flags are applied in a fixed order (crop, rotate, flip,
// adjustments, filter, resize) and exactly one terminal flag decides
// what happens to the result:
//
//	-overwrite        replace the asset's file and refresh its thumbnail
//	-as-new           save as a new private asset and reprocess it
//	-preview FILE     write a bounded JPEG preview to FILE (or - for
//	                  base64 on stdout) without persisting anything
//	-reparse          re-extract EXIF metadata and auto tags only,
//	                  ignoring all transform flags
//
// Usage:
//
//	photoflow-edit [flags] <asset-id>
//
// Examples:
//
//	photoflow-edit -crop 100,50,800,600 -rotate 90 -overwrite 42
//	photoflow-edit -filter emboss -as-new -owner alex 42
//	photoflow-edit -resize 1024x0 -preview out.jpg 42
//	photoflow-edit -reparse 42
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
//	STORAGE_DIR  - Path to the photo storage root (default: /photos)
//
// Notes:
//
// Follow-up work (thumbnail regeneration, reprocessing of a new asset)
// runs synchronously before the command exits, since no job queue is
// available in a one-shot process.
package main
