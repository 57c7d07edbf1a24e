package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"photoflow/internal/database"
	"photoflow/internal/jobs"
	"photoflow/internal/storage"

	"github.com/disintegration/imaging"
)

var (
	// ErrInvalidArgument marks a transform called with out-of-contract
	// arguments.
	ErrInvalidArgument = errors.New("invalid edit argument")
	// ErrUnsupportedFilter marks an unknown filter name.
	ErrUnsupportedFilter = errors.New("unsupported filter")
	// ErrSessionFinished marks use of a session after a terminal call.
	ErrSessionFinished = errors.New("edit session already finished")
)

// Dispatcher hands follow-up work (thumbnail regeneration, full
// reprocessing) to the job runner. Implementations fall back to running
// the work inline when the runner cannot accept it.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind jobs.Kind, assetID int64) error
}

// Editor opens edit sessions over stored assets.
type Editor struct {
	db       *database.Database
	store    *storage.Store
	dispatch Dispatcher
}

// New creates an Editor.
func New(db *database.Database, store *storage.Store, dispatch Dispatcher) *Editor {
	return &Editor{db: db, store: store, dispatch: dispatch}
}

// Open loads an asset's stored bytes into a new Session.
func (e *Editor) Open(ctx context.Context, assetID int64) (*Session, error) {
	asset, err := e.db.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	f, err := e.store.Open(asset.StoredPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode asset %d: %w", assetID, err)
	}

	return &Session{editor: e, asset: asset, img: img}, nil
}

// Session is a single in-progress edit over one decoded image.
type Session struct {
	editor *Editor
	asset  *database.Asset
	img    image.Image

	err      error
	finished bool
}

// Err returns the first error recorded by the chain, if any.
func (s *Session) Err() error {
	return s.err
}

// Image returns the current buffer. Mainly useful in tests.
func (s *Session) Image() image.Image {
	return s.img
}

func (s *Session) fail(err error) *Session {
	if s.err == nil {
		s.err = err
	}
	return s
}

func (s *Session) usable() bool {
	if s.err != nil {
		return false
	}
	if s.finished {
		s.err = ErrSessionFinished
		return false
	}
	return true
}

// Crop cuts the buffer to a w×h region anchored at (x, y). The region
// is clamped to the image bounds; w and h must be positive.
func (s *Session) Crop(x, y, w, h int) *Session {
	if !s.usable() {
		return s
	}
	if w <= 0 || h <= 0 {
		return s.fail(fmt.Errorf("%w: crop size %dx%d", ErrInvalidArgument, w, h))
	}

	b := s.img.Bounds()
	x = clamp(x, 0, b.Dx()-1)
	y = clamp(y, 0, b.Dy()-1)
	right := minInt(x+w, b.Dx())
	bottom := minInt(y+h, b.Dy())

	s.img = imaging.Crop(s.img, image.Rect(b.Min.X+x, b.Min.Y+y, b.Min.X+right, b.Min.Y+bottom))
	return s
}

// Rotate turns the buffer counter-clockwise by angle degrees. Exact
// quarter turns are lossless; any other angle interpolates and expands
// the canvas so corners are not clipped.
func (s *Session) Rotate(angle float64) *Session {
	if !s.usable() {
		return s
	}

	norm := math.Mod(angle, 360)
	if norm < 0 {
		norm += 360
	}

	switch norm {
	case 0:
	case 90:
		s.img = imaging.Rotate90(s.img)
	case 180:
		s.img = imaging.Rotate180(s.img)
	case 270:
		s.img = imaging.Rotate270(s.img)
	default:
		s.img = imaging.Rotate(s.img, norm, color.Transparent)
	}
	return s
}

// Flip mirrors the buffer. Direction is "horizontal" or "vertical".
func (s *Session) Flip(direction string) *Session {
	if !s.usable() {
		return s
	}
	switch direction {
	case "horizontal":
		s.img = imaging.FlipH(s.img)
	case "vertical":
		s.img = imaging.FlipV(s.img)
	default:
		return s.fail(fmt.Errorf("%w: flip direction %q", ErrInvalidArgument, direction))
	}
	return s
}

// enhancementFactor maps a [-100, 100] adjustment value to the
// multiplicative factor 1 + value/100, clamped to [0, 2].
func (s *Session) enhancementFactor(value float64) (float64, bool) {
	if value < -100 || value > 100 {
		s.fail(fmt.Errorf("%w: adjustment value %v outside [-100, 100]", ErrInvalidArgument, value))
		return 0, false
	}
	factor := 1 + value/100
	if factor < 0 {
		factor = 0
	}
	if factor > 2 {
		factor = 2
	}
	return factor, true
}

// AdjustBrightness scales pixel luminance. value 0 is a no-op, -100
// black, +100 doubled.
func (s *Session) AdjustBrightness(value float64) *Session {
	if !s.usable() {
		return s
	}
	factor, ok := s.enhancementFactor(value)
	if !ok || factor == 1 {
		return s
	}

	s.img = imaging.AdjustFunc(s.img, func(c color.NRGBA) color.NRGBA {
		c.R = scaleChannel(c.R, factor)
		c.G = scaleChannel(c.G, factor)
		c.B = scaleChannel(c.B, factor)
		return c
	})
	return s
}

// AdjustContrast changes contrast around middle gray.
func (s *Session) AdjustContrast(value float64) *Session {
	if !s.usable() {
		return s
	}
	factor, ok := s.enhancementFactor(value)
	if !ok || factor == 1 {
		return s
	}
	s.img = imaging.AdjustContrast(s.img, (factor-1)*100)
	return s
}

// AdjustSaturation changes color intensity.
func (s *Session) AdjustSaturation(value float64) *Session {
	if !s.usable() {
		return s
	}
	factor, ok := s.enhancementFactor(value)
	if !ok || factor == 1 {
		return s
	}
	s.img = imaging.AdjustSaturation(s.img, (factor-1)*100)
	return s
}

// AdjustSharpness sharpens for positive values and softens for
// negative ones.
func (s *Session) AdjustSharpness(value float64) *Session {
	if !s.usable() {
		return s
	}
	factor, ok := s.enhancementFactor(value)
	if !ok || factor == 1 {
		return s
	}
	if factor > 1 {
		s.img = imaging.Sharpen(s.img, factor-1)
	} else {
		s.img = imaging.Blur(s.img, 1-factor)
	}
	return s
}

type filterSpec struct {
	kernel    [9]float64
	normalize bool
	bias      int
}

var filterTable = map[string]filterSpec{
	"smooth":       {kernel: [9]float64{1, 1, 1, 1, 5, 1, 1, 1, 1}, normalize: true},
	"edge_enhance": {kernel: [9]float64{-1, -1, -1, -1, 10, -1, -1, -1, -1}, normalize: true},
	"detail":       {kernel: [9]float64{0, -1, 0, -1, 10, -1, 0, -1, 0}, normalize: true},
	"emboss":       {kernel: [9]float64{-1, 0, 0, 0, 1, 0, 0, 0, 0}, bias: 128},
	"contour":      {kernel: [9]float64{-1, -1, -1, -1, 8, -1, -1, -1, -1}, bias: 255},
}

// ApplyFilter runs one of the fixed convolution filters: blur, sharpen,
// edge_enhance, emboss, smooth, contour, detail.
func (s *Session) ApplyFilter(name string) *Session {
	if !s.usable() {
		return s
	}

	switch name {
	case "blur":
		s.img = imaging.Blur(s.img, 1)
	case "sharpen":
		s.img = imaging.Sharpen(s.img, 1)
	default:
		spec, ok := filterTable[name]
		if !ok {
			return s.fail(fmt.Errorf("%w: %q", ErrUnsupportedFilter, name))
		}
		s.img = imaging.Convolve3x3(s.img, spec.kernel, &imaging.ConvolveOptions{
			Normalize: spec.normalize,
			Bias:      spec.bias,
		})
	}
	return s
}

// Resize scales the buffer. With both dimensions and keepAspect the
// image is fit within the box; with one dimension the other follows the
// original aspect ratio; with neither the call is a no-op.
func (s *Session) Resize(width, height int, keepAspect bool) *Session {
	if !s.usable() {
		return s
	}
	if width < 0 || height < 0 {
		return s.fail(fmt.Errorf("%w: resize %dx%d", ErrInvalidArgument, width, height))
	}
	if width == 0 && height == 0 {
		return s
	}

	b := s.img.Bounds()
	w, h := b.Dx(), b.Dy()

	var nw, nh int
	switch {
	case width > 0 && height > 0 && keepAspect:
		ratio := math.Min(float64(width)/float64(w), float64(height)/float64(h))
		nw = maxInt(1, int(math.Round(float64(w)*ratio)))
		nh = maxInt(1, int(math.Round(float64(h)*ratio)))
	case width > 0 && height > 0:
		nw, nh = width, height
	case width > 0:
		nw = width
		nh = maxInt(1, int(math.Round(float64(h)*float64(width)/float64(w))))
	default:
		nh = height
		nw = maxInt(1, int(math.Round(float64(w)*float64(height)/float64(h))))
	}

	s.img = imaging.Resize(s.img, nw, nh, imaging.Lanczos)
	return s
}

func scaleChannel(v uint8, factor float64) uint8 {
	scaled := float64(v) * factor
	if scaled > 255 {
		return 255
	}
	if scaled < 0 {
		return 0
	}
	return uint8(scaled + 0.5)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
