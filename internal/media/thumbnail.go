package media

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"
	"path/filepath"
	"strings"
	"time"

	"photoflow/internal/exif"
	"photoflow/internal/logging"
	"photoflow/internal/metrics"

	"github.com/disintegration/imaging"

	// Register the WEBP decoder; imaging covers JPEG, PNG, and GIF.
	_ "golang.org/x/image/webp"
)

const (
	// DefaultThumbnailBox is the bounding box for generated thumbnails.
	DefaultThumbnailBox = 300
	// DefaultThumbnailQuality is the JPEG quality for generated thumbnails.
	DefaultThumbnailQuality = 85
)

// Thumbnailer produces bounded-size JPEG previews of source images.
type Thumbnailer struct {
	box     int
	quality int
}

// NewThumbnailer creates a Thumbnailer. Non-positive arguments fall back to
// the defaults (300px box, quality 85).
func NewThumbnailer(box, quality int) *Thumbnailer {
	if box <= 0 {
		box = DefaultThumbnailBox
	}
	if quality <= 0 {
		quality = DefaultThumbnailQuality
	}
	return &Thumbnailer{box: box, quality: quality}
}

// Generate decodes the source image, corrects EXIF orientation, composites
// transparency onto white, scales to fit the bounding box (never
// upscaling), and encodes the result as JPEG. Unlike metadata extraction
// this is not best-effort: every failure is returned so the orchestrator
// can retry the run.
func (t *Thumbnailer) Generate(r io.ReadSeeker) ([]byte, error) {
	start := time.Now()

	data, err := t.generate(r)

	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
	return data, nil
}

func (t *Thumbnailer) generate(r io.ReadSeeker) ([]byte, error) {
	// Orientation read failures are silently treated as "no correction";
	// Orientation returns 0 in that case.
	orientation := exif.Orientation(r)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind source: %w", err)
	}

	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}

	img = ApplyOrientation(img, orientation)
	flat := FlattenWhite(img)

	thumb := imaging.Fit(flat, t.box, t.box, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	logging.Debug("Thumbnail generated: %dx%d, %d bytes",
		thumb.Bounds().Dx(), thumb.Bounds().Dy(), buf.Len())

	return buf.Bytes(), nil
}

// ThumbnailName derives the thumbnail filename for a stored file:
// "<base>_thumb.jpg" alongside the original name.
func ThumbnailName(storedName string) string {
	base := filepath.Base(storedName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return name + "_thumb.jpg"
}
