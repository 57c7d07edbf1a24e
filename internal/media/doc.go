// Package media implements image decoding, normalization, and thumbnail
// generation for the photoflow pipeline.
//
// It provides:
//   - content sniffing of the supported input formats (JPEG, PNG, GIF, WEBP)
//   - EXIF orientation correction with a fixed value-to-rotation mapping
//   - color normalization (alpha and paletted images composited onto an
//     opaque white background)
//   - bounded thumbnail generation with high-quality resampling
//   - extension-driven encoding for the editor's commit paths, with WEBP
//     output going through libvips when available
//
// Unlike metadata extraction, thumbnail generation reports errors: a failed
// generation must reach the orchestrator so the run can be retried.
package media
