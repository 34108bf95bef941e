package normalize

import (
	"regexp"
	"strings"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

var (
	zipPlus4 = regexp.MustCompile(`^(\d{5})[-\s]?\d{4}$`)
	zipFive  = regexp.MustCompile(`^\d{5}$`)
	anyDigit = regexp.MustCompile(`\d`)
)

// StandardizePostalCode reduces US ZIP and ZIP+4 to five digits and repairs
// float artifacts like "12345.0". Non-US codes containing digits and of
// plausible length pass through cleaned; everything else is unparseable.
func StandardizePostalCode(v domain.Value) (string, bool) {
	if IsMissing(v) {
		return "", false
	}
	code := strings.TrimSpace(v.Text())
	if m := zipPlus4.FindStringSubmatch(code); m != nil {
		return m[1], true
	}
	if zipFive.MatchString(code) {
		return code, true
	}
	if i := strings.IndexByte(code, '.'); i >= 0 {
		if head := code[:i]; zipFive.MatchString(head) {
			return head, true
		}
	}
	if anyDigit.MatchString(code) && len(code) >= 3 {
		return code, true
	}
	return "", false
}
