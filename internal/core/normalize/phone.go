package normalize

import (
	"fmt"
	"regexp"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

var nonDigits = regexp.MustCompile(`\D`)

// StandardizePhone formats 10-digit and 1-prefixed 11-digit numbers the NANP
// way, keeps bare digits for other plausible lengths (7 to 15), and reports
// everything else as unparseable.
func StandardizePhone(v domain.Value) (string, bool) {
	if IsMissing(v) {
		return "", false
	}
	digits := nonDigits.ReplaceAllString(v.Text(), "")
	switch {
	case len(digits) == 10:
		return fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:10]), true
	case len(digits) == 11 && digits[0] == '1':
		return fmt.Sprintf("+1 (%s) %s-%s", digits[1:4], digits[4:7], digits[7:11]), true
	case len(digits) >= 7 && len(digits) <= 15:
		return digits, true
	default:
		return "", false
	}
}
