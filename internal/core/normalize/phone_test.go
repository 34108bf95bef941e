package normalize

import (
	"testing"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

func TestStandardizePhoneFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"555-123-4567", "(555) 123-4567"},
		{"(555) 123 4567", "(555) 123-4567"},
		{"1-555-123-4567", "+1 (555) 123-4567"},
		{"+44 20 7946 0958", "442079460958"},
		{"1234567", "1234567"},
	}
	for _, c := range cases {
		got, ok := StandardizePhone(domain.StringValue(c.raw))
		if !ok {
			t.Fatalf("expected %q to standardize", c.raw)
		}
		if got != c.want {
			t.Fatalf("%q: got %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestStandardizePhoneRejectsImplausible(t *testing.T) {
	for _, raw := range []string{"", "none", "12345", "12345678901234567890", "ext only"} {
		if _, ok := StandardizePhone(domain.StringValue(raw)); ok {
			t.Fatalf("expected sentinel for %q", raw)
		}
	}
}
