package normalize

import (
	"testing"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

func TestStandardizePostalCode(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"90210", "90210"},
		{"90210-1234", "90210"},
		{"90210 1234", "90210"},
		{"12345.0", "12345"},
		{"SW1A 1AA", "SW1A 1AA"}, // non-US pass-through
	}
	for _, c := range cases {
		got, ok := StandardizePostalCode(domain.StringValue(c.raw))
		if !ok {
			t.Fatalf("expected %q to standardize", c.raw)
		}
		if got != c.want {
			t.Fatalf("%q: got %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestStandardizePostalCodeFromNumericCell(t *testing.T) {
	got, ok := StandardizePostalCode(domain.NumberValue(12345))
	if !ok || got != "12345" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestStandardizePostalCodeRejects(t *testing.T) {
	for _, raw := range []string{"", "none", "ab", "--"} {
		if _, ok := StandardizePostalCode(domain.StringValue(raw)); ok {
			t.Fatalf("expected sentinel for %q", raw)
		}
	}
}
