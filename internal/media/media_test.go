package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01}, "jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}, "png"},
		{"gif87a", []byte("GIF87a\x01\x00\x01\x00\x00\x00"), "gif"},
		{"gif89a", []byte("GIF89a\x01\x00\x01\x00\x00\x00"), "gif"},
		{"webp", []byte{'R', 'I', 'F', 'F', 0x00, 0x00, 0x00, 0x00, 'W', 'E', 'B', 'P'}, "webp"},
		{"garbage", []byte("not an image at all"), "unknown"},
		{"short", []byte{0xFF}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("DetectFormat() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectFormatRewindsReader(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
	r := bytes.NewReader(data)
	if _, err := DetectFormat(r); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, len(data))
	n, _ := r.Read(buf)
	if n != len(data) {
		t.Errorf("reader not rewound: read %d bytes, want %d", n, len(data))
	}
}

func TestIsImagePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"dir/photo.png", true},
		{"photo.gif", true},
		{"photo.webp", true},
		{"photo.bmp", true},
		{"photo.tiff", true},
		{"notes.txt", false},
		{"video.mp4", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		if got := IsImagePath(tt.path); got != tt.want {
			t.Errorf("IsImagePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestApplyOrientation(t *testing.T) {
	// 40x20 so rotation is visible in the dimensions
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))

	tests := []struct {
		name        string
		orientation int
		wantW       int
		wantH       int
	}{
		{"none", 0, 40, 20},
		{"normal", 1, 40, 20},
		{"rotate 180", 3, 40, 20},
		{"rotate for orientation 6", 6, 20, 40},
		{"rotate for orientation 8", 8, 20, 40},
		{"unknown value", 7, 40, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyOrientation(src, tt.orientation)
			b := out.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestApplyOrientation180FlipsPixels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 0, color.NRGBA{B: 255, A: 255})

	out := ApplyOrientation(src, 3)
	r, _, b, _ := out.At(0, 0).RGBA()
	if r != 0 || b == 0 {
		t.Error("expected blue pixel at origin after 180 rotation")
	}
}

func TestFlattenWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	// Fully transparent; should flatten to pure white

	out := FlattenWhite(src)
	r, g, b, a := out.At(2, 2).RGBA()
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF || a != 0xFFFF {
		t.Errorf("transparent pixel flattened to %v,%v,%v,%v, want white", r, g, b, a)
	}
}

func TestFlattenWhiteKeepsOpaquePixels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	out := FlattenWhite(src)
	r, g, b, _ := out.At(1, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("opaque pixel changed: got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func generatePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestThumbnailerGenerate(t *testing.T) {
	tn := NewThumbnailer(0, 0) // defaults

	data, err := tn.Generate(bytes.NewReader(generatePNG(t, 1200, 800)))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("thumbnail format = %q, want jpeg", format)
	}
	if cfg.Width != 300 || cfg.Height != 200 {
		t.Errorf("thumbnail size = %dx%d, want 300x200", cfg.Width, cfg.Height)
	}
}

func TestThumbnailerGenerateNoUpscale(t *testing.T) {
	tn := NewThumbnailer(300, 85)

	data, err := tn.Generate(bytes.NewReader(generatePNG(t, 100, 60)))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}
	if cfg.Width > 100 || cfg.Height > 60 {
		t.Errorf("small image was upscaled to %dx%d", cfg.Width, cfg.Height)
	}
}

func TestThumbnailerGenerateInvalidInput(t *testing.T) {
	tn := NewThumbnailer(300, 85)
	if _, err := tn.Generate(bytes.NewReader([]byte("definitely not an image"))); err == nil {
		t.Error("expected error for non-image input")
	}
}

func TestThumbnailName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"IMG_1234.jpg", "IMG_1234_thumb.jpg"},
		{"uploads/2021/photo.png", "photo_thumb.jpg"},
		{"no_extension", "no_extension_thumb.jpg"},
	}

	for _, tt := range tests {
		if got := ThumbnailName(tt.in); got != tt.want {
			t.Errorf("ThumbnailName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatForFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"out.png", "png"},
		{"out.PNG", "png"},
		{"out.gif", "gif"},
		{"out.webp", "webp"},
		{"out.jpg", "jpeg"},
		{"out.jpeg", "jpeg"},
		{"out.bmp", "jpeg"},
		{"out", "jpeg"},
	}

	for _, tt := range tests {
		if got := FormatForFilename(tt.filename); got != tt.want {
			t.Errorf("FormatForFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	for _, format := range []string{"jpeg", "png", "gif"} {
		data, err := Encode(img, format)
		if err != nil {
			t.Errorf("Encode(%s) error: %v", format, err)
			continue
		}
		_, got, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Errorf("failed to decode %s output: %v", format, err)
			continue
		}
		if got != format {
			t.Errorf("Encode(%s) produced %s", format, got)
		}
	}
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	if _, err := Encode(image.NewNRGBA(image.Rect(0, 0, 1, 1)), "tiff"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestEncodeJpegFlattensAlpha(t *testing.T) {
	// Transparent source must come out white, not black, as JPEG
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	data, err := Encode(src, "jpeg")
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	out, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	r, g, b, _ := out.At(2, 2).RGBA()
	if r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
		t.Errorf("transparent pixel encoded as %d,%d,%d, want near-white", r>>8, g>>8, b>>8)
	}
}
