// Package tagging derives semantic tag names from extracted image metadata.
//
// Tags cover camera brand, capture year and season, resolution class and
// orientation, and geolocation presence. Inference is deterministic and
// emits names in a fixed order; de-duplication is the tag store's job.
package tagging
