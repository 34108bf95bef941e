package normalize

import (
	"testing"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

func TestParseDimensions(t *testing.T) {
	d, ok := ParseDimensions(domain.StringValue("10x20x5"))
	if !ok {
		t.Fatal("expected parse")
	}
	if d.Length != 10 || d.Width != 20 || d.Height != 5 {
		t.Fatalf("got %+v", d)
	}

	d, ok = ParseDimensions(domain.StringValue("10.5 X 20 X 5 cm"))
	if !ok {
		t.Fatal("expected parse with units")
	}
	if d.Length != 10.5 || d.Width != 20 || d.Height != 5 {
		t.Fatalf("got %+v", d)
	}
}

func TestParseDimensionsRejectsPartial(t *testing.T) {
	for _, raw := range []string{"", "10x20", "10x20x5x3", "axbxc"} {
		if _, ok := ParseDimensions(domain.StringValue(raw)); ok {
			t.Fatalf("expected sentinel for %q", raw)
		}
	}
}
