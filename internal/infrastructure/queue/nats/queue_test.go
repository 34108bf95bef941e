package nats

import (
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/nats-io/nats.go"
)

func TestDecodeFileEventJSONPayload(t *testing.T) {
	event := decodeFileEvent([]byte(`{"file_id":"f-1","published_at":"2026-08-01T10:00:00Z"}`))
	if event.FileID != "f-1" {
		t.Fatalf("expected file id f-1, got %q", event.FileID)
	}
	want := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if !event.PublishedAt.Equal(want) {
		t.Fatalf("expected publish time %v, got %v", want, event.PublishedAt)
	}
}

func TestDecodeFileEventBareID(t *testing.T) {
	event := decodeFileEvent([]byte("  f-42 \n"))
	if event.FileID != "f-42" {
		t.Fatalf("expected file id f-42, got %q", event.FileID)
	}
	if !event.PublishedAt.IsZero() {
		t.Fatalf("expected zero publish time, got %v", event.PublishedAt)
	}
}

func TestWrapTemporaryTagsRetryableErrors(t *testing.T) {
	err := wrapTemporaryIfNeeded(nats.ErrNoServers)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind, got %v", err)
	}

	plain := errors.New("bad subject")
	got := wrapTemporaryIfNeeded(plain)
	if !errors.Is(got, plain) {
		t.Fatalf("expected original error preserved, got %v", got)
	}
	if domain.IsKind(got, domain.ErrTemporary) {
		t.Fatalf("expected permanent error to stay untagged, got %v", got)
	}
}
