package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

// DefaultDateFormats are tried in order; the first successful parse wins.
var DefaultDateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04",
	"01/02/2006",
	"01-02-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate tries each candidate format in order and returns the first
// successful parse. Numeric values in the plausible Excel range are decoded
// as serial dates (days since 1899-12-30). Unmatched input is reported via
// the second return; malformed input never panics.
func ParseDate(v domain.Value, formats ...string) (time.Time, bool) {
	switch v.Kind {
	case domain.KindTime:
		return v.Time, true
	case domain.KindNumber:
		return excelSerialDate(v.Num)
	}
	if IsMissing(v) {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(v.Text())
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, ok := excelSerialDate(f); ok {
			return t, true
		}
		// purely numeric but outside the serial range; compact layouts
		// like 20060102 still get their chance below
	}
	if len(formats) == 0 {
		formats = DefaultDateFormats
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func excelSerialDate(serial float64) (time.Time, bool) {
	if serial < 20000 || serial > 80000 {
		return time.Time{}, false
	}
	days := int(serial)
	t := excelEpoch.AddDate(0, 0, days)
	if frac := serial - float64(days); frac > 0 {
		t = t.Add(time.Duration(frac * float64(24*time.Hour)))
	}
	return t, true
}
