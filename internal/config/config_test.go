package config

import (
	"testing"
	"time"
)

func TestLoadIncludesPipelineDefaults(t *testing.T) {
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("CATALOG_PATH", "")
	t.Setenv("OLLAMA_URL", "")
	t.Setenv("PROCESS_TIMEOUT", "")

	cfg := Load()
	if cfg.NATSSubject != "files.registered" {
		t.Fatalf("expected default subject files.registered, got %q", cfg.NATSSubject)
	}
	if cfg.StoragePath != "./data/uploads" {
		t.Fatalf("expected default storage path, got %q", cfg.StoragePath)
	}
	if cfg.CatalogPath != "" {
		t.Fatalf("expected empty catalog path, got %q", cfg.CatalogPath)
	}
	if cfg.OllamaURL != "" {
		t.Fatalf("expected suggester disabled by default, got %q", cfg.OllamaURL)
	}
	if cfg.ProcessTimeout != 5*time.Minute {
		t.Fatalf("expected default process timeout 5m, got %s", cfg.ProcessTimeout)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("NATS_SUBJECT", "files.custom")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")
	t.Setenv("SUGGEST_REQUESTS_PER_MINUTE", "12")
	t.Setenv("PROCESS_TIMEOUT", "90s")
	t.Setenv("WORKER_METRICS_PORT", "9191")

	cfg := Load()
	if cfg.NATSSubject != "files.custom" {
		t.Fatalf("expected subject override, got %q", cfg.NATSSubject)
	}
	if cfg.OllamaURL != "http://ollama:11434" {
		t.Fatalf("expected ollama url override, got %q", cfg.OllamaURL)
	}
	if cfg.SuggestPerMinute != 12 {
		t.Fatalf("expected 12 suggest requests per minute, got %d", cfg.SuggestPerMinute)
	}
	if cfg.ProcessTimeout != 90*time.Second {
		t.Fatalf("expected process timeout 90s, got %s", cfg.ProcessTimeout)
	}
	if cfg.WorkerMetricsPort != "9191" {
		t.Fatalf("expected metrics port override, got %q", cfg.WorkerMetricsPort)
	}
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("SUGGEST_REQUESTS_PER_MINUTE", "lots")
	t.Setenv("PROCESS_TIMEOUT", "soon")

	cfg := Load()
	if cfg.SuggestPerMinute != 30 {
		t.Fatalf("expected fallback 30, got %d", cfg.SuggestPerMinute)
	}
	if cfg.ProcessTimeout != 5*time.Minute {
		t.Fatalf("expected fallback 5m, got %s", cfg.ProcessTimeout)
	}
}
