package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

type CasePolicy int

const (
	CaseNone CasePolicy = iota
	CaseLower
	CaseUpper
	CaseTitle
)

var missingTokens = map[string]struct{}{
	"": {}, "none": {}, "null": {}, "na": {}, "n/a": {}, "nan": {},
}

// IsMissing reports whether a value carries no usable content: a null kind,
// blank after trimming, or a conventional null token.
func IsMissing(v domain.Value) bool {
	switch v.Kind {
	case domain.KindNull:
		return true
	case domain.KindNumber, domain.KindBool, domain.KindTime:
		return false
	}
	token := strings.ToLower(strings.TrimSpace(v.Text()))
	_, ok := missingTokens[token]
	return ok
}

// Clean trims, collapses internal whitespace runs, strips control characters
// and applies the case policy. Idempotent: Clean(Clean(v)) == Clean(v).
func Clean(v domain.Value, policy CasePolicy) string {
	if IsMissing(v) {
		return ""
	}
	return CleanString(v.Text(), policy)
}

// CleanDefault is Clean with a fallback for missing input.
func CleanDefault(v domain.Value, policy CasePolicy, fallback string) string {
	if s := Clean(v, policy); s != "" {
		return s
	}
	return fallback
}

func CleanString(s string, policy CasePolicy) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	switch policy {
	case CaseLower:
		return strings.ToLower(s)
	case CaseUpper:
		return strings.ToUpper(s)
	case CaseTitle:
		return cases.Title(language.English).String(strings.ToLower(s))
	default:
		return s
	}
}
