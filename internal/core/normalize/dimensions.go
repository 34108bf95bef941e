package normalize

import (
	"regexp"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

// Dimensions in centimeters, parsed from "L x W x H" strings.
type Dimensions struct {
	Length float64
	Width  float64
	Height float64
}

var dimSeparator = regexp.MustCompile(`[xX]`)

// ParseDimensions accepts exactly three x-separated numeric parts; a partial
// parse fails as a whole.
func ParseDimensions(v domain.Value) (Dimensions, bool) {
	if IsMissing(v) {
		return Dimensions{}, false
	}
	parts := dimSeparator.Split(v.Text(), -1)
	if len(parts) != 3 {
		return Dimensions{}, false
	}
	var d Dimensions
	for i, target := range []*float64{&d.Length, &d.Width, &d.Height} {
		f, ok := ParseDecimal(domain.StringValue(parts[i]))
		if !ok {
			return Dimensions{}, false
		}
		*target = f
	}
	return d, true
}
