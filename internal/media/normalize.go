package media

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ApplyOrientation rotates img according to an EXIF orientation value.
// Values 3, 6, and 8 map to 180, 270, and 90 degree counter-clockwise
// rotations with the canvas expanded to fit. Any other value returns the
// image unchanged. The mapping is fixed; thumbnails rendered from rotated
// camera output depend on it exactly.
func ApplyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 3:
		return imaging.Rotate180(img)
	case 6:
		return imaging.Rotate270(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// FlattenWhite composites img onto an opaque white background using its own
// alpha channel as the mask. Fully opaque images are returned as a plain
// NRGBA clone.
func FlattenWhite(img image.Image) *image.NRGBA {
	if isOpaque(img) {
		return imaging.Clone(img)
	}

	background := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	return imaging.Overlay(background, img, image.Point{}, 1.0)
}

// isOpaque reports whether img is known to have no transparent pixels.
// Paletted and alpha-carrying images answer through their own Opaque
// method; images without one are treated as needing compositing.
func isOpaque(img image.Image) bool {
	type opaquer interface {
		Opaque() bool
	}
	if o, ok := img.(opaquer); ok {
		return o.Opaque()
	}
	return false
}
