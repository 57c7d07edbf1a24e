package exif

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
	"time"

	"photoflow/internal/logging"

	// Image format decoders for dimension probing
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP format support
)

// timestampLayout is the EXIF date/time format.
const timestampLayout = "2006:01:02 15:04:05"

// timestampFields are tried in priority order; the first parseable value
// wins.
var timestampFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// Metadata is the structured result of one extraction. String fields are
// empty and pointer fields nil when the source carries no usable value.
// The record is never mutated after Extract returns it.
type Metadata struct {
	CameraMake   string
	CameraModel  string
	TakenAt      *time.Time
	ExposureTime string
	FNumber      string // formatted "f/<x.x>"
	ISO          *int
	FocalLength  string // formatted "<x.x>mm"
	GPSLatitude  *float64
	GPSLongitude *float64

	// Width and Height come from decoding the image, not from EXIF.
	// Zero when the image could not be decoded.
	Width  int
	Height int
}

// Extract parses EXIF metadata and pixel dimensions from r. The reader is
// rewound to the start before each sub-read and left at the start on
// return, so downstream consumers see a fresh stream.
func Extract(r io.ReadSeeker) Metadata {
	var meta Metadata
	if r == nil {
		return meta
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		logging.Debug("exif: seek failed: %v", err)
		return meta
	}

	if x, err := exif.Decode(r); err == nil {
		meta.CameraMake = stringField(x, exif.Make)
		meta.CameraModel = stringField(x, exif.Model)
		meta.TakenAt = timestamp(x)
		meta.ExposureTime = exposureTime(x)
		meta.FNumber = formatDecimal(x, exif.FNumber, "f/", "")
		meta.ISO = isoValue(x)
		meta.FocalLength = formatDecimal(x, exif.FocalLength, "", "mm")
		meta.GPSLatitude = gpsCoordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef, "S")
		meta.GPSLongitude = gpsCoordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef, "W")
	} else {
		logging.Debug("exif: decode failed: %v", err)
	}

	// Dimensions are always re-derived from the image data and overwrite
	// anything EXIF reported.
	if _, err := r.Seek(0, io.SeekStart); err == nil {
		if cfg, _, err := image.DecodeConfig(r); err == nil {
			meta.Width = cfg.Width
			meta.Height = cfg.Height
		} else {
			logging.Debug("exif: dimension decode failed: %v", err)
		}
	}

	_, _ = r.Seek(0, io.SeekStart)
	return meta
}

// Orientation returns the EXIF orientation value from r, or 0 when absent
// or unreadable. The reader is left at the start on return.
func Orientation(r io.ReadSeeker) int {
	if r == nil {
		return 0
	}
	defer func() { _, _ = r.Seek(0, io.SeekStart) }()

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0
	}
	x, err := exif.Decode(r)
	if err != nil {
		return 0
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}

func stringField(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func timestamp(x *exif.Exif) *time.Time {
	for _, field := range timestampFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, err := time.Parse(timestampLayout, strings.TrimSpace(s)); err == nil {
			return &t
		}
	}
	return nil
}

func exposureTime(x *exif.Exif) string {
	tag, err := x.Get(exif.ExposureTime)
	if err != nil {
		return ""
	}
	n, ok := numericAt(tag, 0)
	if !ok {
		return rawString(tag)
	}
	return n.String()
}

// formatDecimal renders a numeric tag to one decimal place with a fixed
// prefix/suffix, falling back to the tag's raw form when the value is not
// numeric.
func formatDecimal(x *exif.Exif, field exif.FieldName, prefix, suffix string) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	n, ok := numericAt(tag, 0)
	if !ok {
		return rawString(tag)
	}
	return fmt.Sprintf("%s%.1f%s", prefix, n.Decimal(), suffix)
}

func isoValue(x *exif.Exif) *int {
	tag, err := x.Get(exif.ISOSpeedRatings)
	if err != nil {
		return nil
	}
	v, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &v
}

// gpsCoordinate reads a degree/minute/second triple and composes the signed
// decimal value. Fewer than three components leaves the field unset.
func gpsCoordinate(x *exif.Exif, coordField, refField exif.FieldName, negativeRef string) *float64 {
	tag, err := x.Get(coordField)
	if err != nil {
		return nil
	}
	if tag.Count < 3 {
		return nil
	}

	degrees, ok := numericAt(tag, 0)
	if !ok {
		return nil
	}
	minutes, ok := numericAt(tag, 1)
	if !ok {
		return nil
	}
	seconds, ok := numericAt(tag, 2)
	if !ok {
		return nil
	}

	decimal := composeDecimal(degrees.Decimal(), minutes.Decimal(), seconds.Decimal())

	if refTag, err := x.Get(refField); err == nil {
		if ref, err := refTag.StringVal(); err == nil && strings.TrimSpace(ref) == negativeRef {
			decimal = -decimal
		}
	}

	return &decimal
}

func composeDecimal(degrees, minutes, seconds float64) float64 {
	return degrees + minutes/60.0 + seconds/3600.0
}

func rawString(tag fmt.Stringer) string {
	return strings.Trim(tag.String(), `"`)
}

func formatRatio(num, den int64) string {
	if den == 1 {
		return strconv.FormatInt(num, 10)
	}
	return fmt.Sprintf("%d/%d", num, den)
}
