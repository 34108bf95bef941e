package normalize

import (
	"testing"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

func TestParseDateMatchesDirectParseForEveryFormat(t *testing.T) {
	ref := time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC)
	for _, layout := range DefaultDateFormats {
		rendered := ref.Format(layout)
		direct, err := time.Parse(layout, rendered)
		if err != nil {
			t.Fatalf("direct parse of %q with %q failed: %v", rendered, layout, err)
		}
		got, ok := ParseDate(domain.StringValue(rendered))
		if !ok {
			t.Fatalf("ParseDate rejected %q (layout %q)", rendered, layout)
		}
		if !got.Equal(direct) {
			t.Fatalf("layout %q: got %v, want %v", layout, got, direct)
		}
	}
}

func TestParseDateUnsupportedReturnsSentinel(t *testing.T) {
	for _, raw := range []string{"31/12/2021", "not-a-date", "2021-13-40", "12345678901"} {
		if _, ok := ParseDate(domain.StringValue(raw)); ok {
			t.Fatalf("expected sentinel for %q", raw)
		}
	}
	if _, ok := ParseDate(domain.NullValue()); ok {
		t.Fatal("expected sentinel for null")
	}
}

func TestParseDateExcelSerial(t *testing.T) {
	got, ok := ParseDate(domain.NumberValue(43831))
	if !ok {
		t.Fatal("expected excel serial to parse")
	}
	want := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// same serial arriving as a string cell
	got, ok = ParseDate(domain.StringValue("43831"))
	if !ok || !got.Equal(want) {
		t.Fatalf("string serial: got %v ok=%v", got, ok)
	}

	if _, ok := ParseDate(domain.NumberValue(123.0)); ok {
		t.Fatal("small floats are not dates")
	}
	if _, ok := ParseDate(domain.NumberValue(99999)); ok {
		t.Fatal("floats past the serial range are not dates")
	}
}

func TestParseDatePassesThroughTypedTime(t *testing.T) {
	want := time.Date(2023, time.July, 1, 12, 0, 0, 0, time.UTC)
	got, ok := ParseDate(domain.TimeValue(want))
	if !ok || !got.Equal(want) {
		t.Fatalf("got %v ok=%v", got, ok)
	}
}

func TestParseDateExplicitFormatList(t *testing.T) {
	got, ok := ParseDate(domain.StringValue("04.03.2021"), "02.01.2006")
	if !ok {
		t.Fatal("expected custom layout to parse")
	}
	want := time.Date(2021, time.March, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, ok := ParseDate(domain.StringValue("2021-03-04"), "02.01.2006"); ok {
		t.Fatal("explicit list should exclude default layouts")
	}
}
