package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cat.NormalizeGender(domain.StringValue("m")); got != "MALE" {
		t.Fatalf("expected default gender table, got %q", got)
	}
}

func TestLoadMergesOverlayOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	overlay := `unknown: N/D
cities:
  sf: San Francisco
gender:
  x: OTHER
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cat.NormalizeCity(domain.StringValue("SF")); got != "San Francisco" {
		t.Fatalf("expected overlay city, got %q", got)
	}
	if got := cat.NormalizeCity(domain.StringValue("la")); got != "Los Angeles" {
		t.Fatalf("expected default city to survive merge, got %q", got)
	}
	if got := cat.NormalizeGender(domain.StringValue("x")); got != "OTHER" {
		t.Fatalf("expected overlay gender entry, got %q", got)
	}
	if got := cat.NormalizeGender(domain.StringValue("")); got != "N/D" {
		t.Fatalf("expected overlay unknown token, got %q", got)
	}
}

func TestLoadRejectsMalformedOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("cities: not-a-map\n"), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
