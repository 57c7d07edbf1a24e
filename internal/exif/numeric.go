package exif

import (
	"strconv"

	"github.com/rwcarlsen/goexif/tiff"
)

// numeric is a normalized EXIF numeric value: either a rational pair or a
// plain value. Heterogeneous tag encodings are folded into this one type at
// the goexif boundary so field logic never inspects tag formats itself.
type numeric struct {
	num, den int64
	plain    float64
	rational bool
}

// numericAt reads the i-th value of a tag as a numeric, reporting false
// when the tag has no usable value at that index.
func numericAt(tag *tiff.Tag, i int) (numeric, bool) {
	if tag == nil || i >= int(tag.Count) {
		return numeric{}, false
	}
	if num, den, err := tag.Rat2(i); err == nil {
		if den == 0 {
			return numeric{}, false
		}
		return numeric{num: num, den: den, rational: true}, true
	}
	if v, err := tag.Int(i); err == nil {
		return numeric{plain: float64(v)}, true
	}
	if v, err := tag.Float(i); err == nil {
		return numeric{plain: v}, true
	}
	return numeric{}, false
}

// Decimal converts the value to a float (num/den for rationals).
func (n numeric) Decimal() float64 {
	if n.rational {
		return float64(n.num) / float64(n.den)
	}
	return n.plain
}

// String renders the value the way cameras write it: rationals keep their
// num/den form ("1/200"), whole rationals and plain values drop it.
func (n numeric) String() string {
	if n.rational {
		return formatRatio(n.num, n.den)
	}
	return strconv.FormatFloat(n.plain, 'f', -1, 64)
}
