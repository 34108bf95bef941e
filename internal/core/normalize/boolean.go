package normalize

import (
	"strconv"
	"strings"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

var (
	trueTokens = map[string]struct{}{
		"true": {}, "yes": {}, "y": {}, "1": {}, "t": {},
		"active": {}, "completed": {}, "delivered": {},
	}
	falseTokens = map[string]struct{}{
		"false": {}, "no": {}, "n": {}, "0": {}, "f": {},
		"inactive": {}, "failed": {}, "pending": {}, "cancelled": {}, "returned": {},
	}
)

// ParseBool maps strict token sets to a boolean; ambiguous input stays
// unknown (second return false) rather than being guessed at.
func ParseBool(v domain.Value) (bool, bool) {
	if v.Kind == domain.KindBool {
		return v.Bool, true
	}
	if IsMissing(v) {
		return false, false
	}
	token := strings.ToLower(strings.TrimSpace(v.Text()))
	if _, ok := trueTokens[token]; ok {
		return true, true
	}
	if _, ok := falseTokens[token]; ok {
		return false, true
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		if f == 1 {
			return true, true
		}
		if f == 0 {
			return false, true
		}
	}
	return false, false
}
