package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

var nonNumericChars = regexp.MustCompile(`[^0-9.\-eE]`)

// ParseDecimal strips currency symbols and thousands separators, then parses
// what remains. The sign of the input is never altered; failure is reported
// through the second return.
func ParseDecimal(v domain.Value) (float64, bool) {
	if v.Kind == domain.KindNumber {
		return v.Num, true
	}
	if IsMissing(v) || v.Kind == domain.KindBool || v.Kind == domain.KindTime {
		return 0, false
	}
	cleaned := nonNumericChars.ReplaceAllString(strings.TrimSpace(v.Text()), "")
	if cleaned == "" || cleaned == "." || cleaned == "-" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseInt is float-first coercion truncated toward zero.
func ParseInt(v domain.Value) (int, bool) {
	f, ok := ParseDecimal(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
