package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

// NameParts is the result of splitting a personal name.
type NameParts struct {
	First  string
	Middle string
	Last   string
	Suffix string
}

func (p NameParts) Empty() bool {
	return p.First == "" && p.Last == ""
}

// Full reassembles the standardized display form.
func (p NameParts) Full() string {
	fields := make([]string, 0, 4)
	for _, f := range []string{p.First, p.Middle, p.Last} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	full := strings.Join(fields, " ")
	if p.Suffix != "" {
		if full == "" {
			return p.Suffix
		}
		full += " " + p.Suffix
	}
	return full
}

var namePrefixes = map[string]struct{}{
	"MR": {}, "MRS": {}, "MS": {}, "MISS": {}, "DR": {}, "PROF": {},
	"REV": {}, "SIR": {}, "MADAM": {},
}

var nameSuffixes = map[string]string{
	"JR": "Jr.", "SR": "Sr.", "II": "II", "III": "III", "IV": "IV", "V": "V",
	"PHD": "PhD", "MD": "MD", "DDS": "DDS", "ESQ": "Esq.",
}

var surnameParticles = map[string]struct{}{
	"VAN": {}, "VON": {}, "DE": {}, "DEL": {}, "DELLA": {}, "DI": {}, "DA": {},
	"LA": {}, "LE": {}, "DER": {}, "DEN": {}, "MAC": {}, "ST": {},
}

// SplitName standardizes and splits a personal name: honorific prefixes are
// dropped, suffixes recognized, surname particles glued to the last name.
// Single-token input becomes the first name; empty input yields empty parts,
// never an error.
func SplitName(v domain.Value) NameParts {
	cleaned := Clean(v, CaseNone)
	if cleaned == "" {
		return NameParts{}
	}
	tokens := strings.Fields(cleaned)

	for len(tokens) > 0 {
		if _, ok := namePrefixes[bareToken(tokens[0])]; !ok {
			break
		}
		tokens = tokens[1:]
	}

	var suffix string
	for len(tokens) > 1 {
		s, ok := nameSuffixes[bareToken(tokens[len(tokens)-1])]
		if !ok {
			break
		}
		if suffix == "" {
			suffix = s
		} else {
			suffix = s + " " + suffix
		}
		tokens = tokens[:len(tokens)-1]
	}

	switch len(tokens) {
	case 0:
		return NameParts{Suffix: suffix}
	case 1:
		return NameParts{First: titleToken(tokens[0]), Suffix: suffix}
	}

	// particles preceding the final token belong to the surname
	last := len(tokens) - 1
	start := last
	for start > 1 {
		if _, ok := surnameParticles[bareToken(tokens[start-1])]; !ok {
			break
		}
		start--
	}
	parts := NameParts{
		First:  titleToken(tokens[0]),
		Last:   titleTokens(tokens[start : last+1]),
		Suffix: suffix,
	}
	if start > 1 {
		parts.Middle = titleTokens(tokens[1:start])
	}
	return parts
}

func bareToken(tok string) string {
	return strings.ToUpper(strings.Trim(tok, ".,"))
}

func titleToken(tok string) string {
	return CleanString(strings.Trim(tok, ","), CaseTitle)
}

func titleTokens(toks []string) string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = titleToken(t)
	}
	return strings.Join(out, " ")
}

// FoldAccents strips diacritical marks so "José" and "Jose" produce the same
// identity key.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
