// Package exif extracts structured metadata from image files.
//
// Extract never fails: individual field parse errors leave the field at its
// zero value, and a completely unreadable source yields an all-defaults
// Metadata record. Callers can treat the returned record as always valid.
// Pixel dimensions are re-derived by decoding the image itself, which is
// more reliable than the dimensions some cameras write into EXIF.
package exif
