package tagging

import (
	"reflect"
	"testing"
	"time"

	"photoflow/internal/exif"
)

func timePtr(t time.Time) *time.Time { return &t }

func floatPtr(v float64) *float64 { return &v }

func TestInferBrandTags(t *testing.T) {
	tests := []struct {
		name     string
		make     string
		expected string // "" when no brand tag should be emitted
	}{
		{"Canon", "Canon", "Canon"},
		{"Lowercase nikon", "nikon corporation", "Nikon"},
		{"Apple maps to iPhone", "Apple", "iPhone"},
		{"Substring match", "SONY ILCE-7M3", "Sony"},
		{"Unknown make", "Hasselblad", ""},
		{"Empty make", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := exif.Metadata{CameraMake: tt.make}
			tags := Infer(meta, 0, 0)

			if tt.expected == "" {
				if len(tags) != 0 {
					t.Errorf("expected no tags, got %v", tags)
				}
				return
			}
			if len(tags) != 1 || tags[0] != tt.expected {
				t.Errorf("tags = %v, want [%s]", tags, tt.expected)
			}
		})
	}
}

func TestInferBrandFirstMatchWins(t *testing.T) {
	// The make contains two table entries; the earlier table row must win.
	meta := exif.Metadata{CameraMake: "samsung by olympus"}
	tags := Infer(meta, 0, 0)

	if len(tags) != 1 || tags[0] != "Olympus" {
		t.Errorf("tags = %v, want [Olympus]", tags)
	}
}

func TestInferTemporalTags(t *testing.T) {
	tests := []struct {
		name   string
		month  time.Month
		season string
	}{
		{"March is spring", time.March, "春季"},
		{"May is spring", time.May, "春季"},
		{"July is summer", time.July, "夏季"},
		{"October is autumn", time.October, "秋季"},
		{"December is winter", time.December, "冬季"},
		{"January is winter", time.January, "冬季"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := time.Date(2023, tt.month, 15, 12, 0, 0, 0, time.UTC)
			meta := exif.Metadata{TakenAt: timePtr(taken)}
			tags := Infer(meta, 0, 0)

			expected := []string{"2023年", tt.season}
			if !reflect.DeepEqual(tags, expected) {
				t.Errorf("tags = %v, want %v", tags, expected)
			}
		})
	}
}

func TestInferResolutionTags(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		expected []string
	}{
		{
			name:     "Six megapixels is not high definition",
			width:    3000,
			height:   2000,
			expected: []string{"横向"},
		},
		{
			name:     "Twelve megapixels is high definition",
			width:    4000,
			height:   3000,
			expected: []string{"高清", "横向"},
		},
		{
			name:     "Portrait orientation",
			width:    2000,
			height:   3000,
			expected: []string{"竖向"},
		},
		{
			name:     "Square image",
			width:    1000,
			height:   1000,
			expected: []string{"方形"},
		},
		{
			name:     "Exactly at the threshold",
			width:    4000,
			height:   2000,
			expected: []string{"高清", "横向"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := exif.Metadata{Width: tt.width, Height: tt.height}
			tags := Infer(meta, 0, 0)
			if !reflect.DeepEqual(tags, tt.expected) {
				t.Errorf("tags = %v, want %v", tags, tt.expected)
			}
		})
	}
}

func TestInferBaseDimensionsFallback(t *testing.T) {
	// Metadata without decoded dimensions falls back to the asset's stored
	// dimensions.
	tags := Infer(exif.Metadata{}, 4000, 3000)

	expected := []string{"高清", "横向"}
	if !reflect.DeepEqual(tags, expected) {
		t.Errorf("tags = %v, want %v", tags, expected)
	}
}

func TestInferGeoTag(t *testing.T) {
	tests := []struct {
		name     string
		lat      *float64
		lon      *float64
		expected int
	}{
		{"Both coordinates", floatPtr(48.85), floatPtr(2.35), 1},
		{"Latitude only", floatPtr(48.85), nil, 0},
		{"Longitude only", nil, floatPtr(2.35), 0},
		{"Neither", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := exif.Metadata{GPSLatitude: tt.lat, GPSLongitude: tt.lon}
			tags := Infer(meta, 0, 0)
			if len(tags) != tt.expected {
				t.Errorf("got %d tags (%v), want %d", len(tags), tags, tt.expected)
			}
		})
	}
}

func TestInferDeterministicOrder(t *testing.T) {
	taken := time.Date(2021, time.August, 1, 0, 0, 0, 0, time.UTC)
	meta := exif.Metadata{
		CameraMake:   "Canon",
		TakenAt:      timePtr(taken),
		Width:        4000,
		Height:       3000,
		GPSLatitude:  floatPtr(35.68),
		GPSLongitude: floatPtr(139.69),
	}

	expected := []string{"Canon", "2021年", "夏季", "高清", "横向", "有地理位置"}

	first := Infer(meta, 0, 0)
	if !reflect.DeepEqual(first, expected) {
		t.Fatalf("tags = %v, want %v", first, expected)
	}

	// Repeated calls yield the identical sequence.
	for i := 0; i < 5; i++ {
		if got := Infer(meta, 0, 0); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d: tags = %v, want %v", i, got, first)
		}
	}
}
