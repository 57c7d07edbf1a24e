package tagging

import (
	"fmt"
	"strings"

	"photoflow/internal/exif"
)

// highDefinitionPixels is the pixel count at or above which an image is
// tagged as high definition (8 megapixels).
const highDefinitionPixels = 8_000_000

// brandRule maps a substring of the lowercased camera make to a canonical
// brand label. The table order is significant: the first matching rule wins
// and at most one brand tag is emitted.
type brandRule struct {
	substr string
	label  string
}

var brandTable = []brandRule{
	{"canon", "Canon"},
	{"nikon", "Nikon"},
	{"sony", "Sony"},
	{"fujifilm", "Fujifilm"},
	{"panasonic", "Panasonic"},
	{"olympus", "Olympus"},
	{"apple", "iPhone"},
	{"samsung", "Samsung"},
	{"huawei", "Huawei"},
	{"xiaomi", "Xiaomi"},
	{"oppo", "OPPO"},
	{"vivo", "vivo"},
}

// Season and resolution labels, as shown to users.
const (
	labelSpring      = "春季"
	labelSummer      = "夏季"
	labelAutumn      = "秋季"
	labelWinter      = "冬季"
	labelHighDef     = "高清"
	labelLandscape   = "横向"
	labelPortrait    = "竖向"
	labelSquare      = "方形"
	labelHasLocation = "有地理位置"
)

// Infer derives auto-tag names from extracted metadata and the asset's base
// dimensions. It is a pure function: the same inputs always produce the
// same names in the same order. Duplicates across runs are reconciled by
// the tag store's find-or-create, not here.
//
// baseWidth and baseHeight are the asset record's stored dimensions, used
// only when the metadata carries no decoded dimensions of its own.
func Infer(meta exif.Metadata, baseWidth, baseHeight int) []string {
	var tags []string

	// Camera brand
	if meta.CameraMake != "" {
		make := strings.ToLower(meta.CameraMake)
		for _, rule := range brandTable {
			if strings.Contains(make, rule.substr) {
				tags = append(tags, rule.label)
				break
			}
		}
	}

	// Capture year and season
	if meta.TakenAt != nil {
		tags = append(tags, fmt.Sprintf("%d年", meta.TakenAt.Year()))
		tags = append(tags, seasonLabel(int(meta.TakenAt.Month())))
	}

	// Resolution
	width := meta.Width
	height := meta.Height
	if width == 0 {
		width = baseWidth
	}
	if height == 0 {
		height = baseHeight
	}

	if width > 0 && height > 0 {
		if width*height >= highDefinitionPixels {
			tags = append(tags, labelHighDef)
		}
		switch {
		case width > height:
			tags = append(tags, labelLandscape)
		case height > width:
			tags = append(tags, labelPortrait)
		default:
			tags = append(tags, labelSquare)
		}
	}

	// Geolocation requires both coordinates
	if meta.GPSLatitude != nil && meta.GPSLongitude != nil {
		tags = append(tags, labelHasLocation)
	}

	return tags
}

func seasonLabel(month int) string {
	switch month {
	case 3, 4, 5:
		return labelSpring
	case 6, 7, 8:
		return labelSummer
	case 9, 10, 11:
		return labelAutumn
	default:
		return labelWinter
	}
}
