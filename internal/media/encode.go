package media

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"
)

const editQuality = 95

// FormatForFilename picks the encode format for a destination filename by
// extension. Anything unrecognized encodes as JPEG, which matches how
// edited copies are written out.
func FormatForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}

// Encode serializes an image in the given format. JPEG output is
// composited onto white first since JPEG has no alpha channel; WEBP
// requires libvips to be available.
func Encode(img image.Image, format string) ([]byte, error) {
	switch format {
	case "jpeg":
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, FlattenWhite(img), &jpeg.Options{Quality: editQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
		return buf.Bytes(), nil
	case "png":
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
		return buf.Bytes(), nil
	case "gif":
		var buf bytes.Buffer
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("failed to encode gif: %w", err)
		}
		return buf.Bytes(), nil
	case "webp":
		return EncodeWebp(img)
	default:
		return nil, fmt.Errorf("unsupported encode format %q", format)
	}
}
