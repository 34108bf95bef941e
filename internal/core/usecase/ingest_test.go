package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

type ingestRegistryFake struct {
	registered  *domain.SourceFile
	profiled    *domain.FileProfile
	errorReason string
	file        *domain.SourceFile
	registerErr error
}

func (f *ingestRegistryFake) Register(_ context.Context, file *domain.SourceFile) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	copyFile := *file
	f.registered = &copyFile
	return nil
}

func (f *ingestRegistryFake) GetByID(context.Context, string) (*domain.SourceFile, error) {
	if f.file == nil {
		return nil, domain.WrapError(domain.ErrFileNotFound, "get source file", errors.New("no such file"))
	}
	copyFile := *f.file
	return &copyFile, nil
}

func (f *ingestRegistryFake) List(context.Context, int) ([]domain.SourceFile, error) {
	return nil, errors.New("not implemented")
}

func (f *ingestRegistryFake) MarkProfiled(_ context.Context, _ string, profile domain.FileProfile) error {
	f.profiled = &profile
	return nil
}

func (f *ingestRegistryFake) Claim(context.Context, string, string) (domain.FileStatus, error) {
	return "", errors.New("not implemented")
}

func (f *ingestRegistryFake) Release(context.Context, string, string, domain.FileStatus) error {
	return errors.New("not implemented")
}

func (f *ingestRegistryFake) MarkError(_ context.Context, _ string, reason string) error {
	f.errorReason = reason
	return nil
}

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	saveErr   error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return int64(len(raw)), nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

type ingestReaderFake struct {
	profile domain.FileProfile
	err     error
}

func (f *ingestReaderFake) Read(context.Context, string, io.Reader) ([]domain.RawRecord, domain.FileProfile, error) {
	if f.err != nil {
		return nil, domain.FileProfile{}, f.err
	}
	return nil, f.profile, nil
}

type ingestQueueFake struct {
	fileID string
	err    error
}

func (f *ingestQueueFake) PublishFileRegistered(_ context.Context, fileID string) error {
	if f.err != nil {
		return f.err
	}
	f.fileID = fileID
	return nil
}

func (f *ingestQueueFake) SubscribeFileRegistered(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestUploadRegistersProfilesAndQueues(t *testing.T) {
	registry := &ingestRegistryFake{}
	storage := &ingestStorageFake{}
	reader := &ingestReaderFake{profile: domain.FileProfile{
		RowCount: 2, ColCount: 3, DelimiterGuess: ",", EncodingGuess: "utf-8",
	}}
	queue := &ingestQueueFake{}
	uc := NewIngestFileUseCase(registry, storage, reader, queue)

	file, err := uc.Upload(context.Background(), "customers v1.csv", "customer", bytes.NewBufferString("a,b"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if file.FileID == "" {
		t.Fatalf("expected a file id")
	}
	if file.Status != domain.StatusProfiled {
		t.Fatalf("expected status profiled, got %s", file.Status)
	}
	if file.RowCount != 2 || file.ColCount != 3 {
		t.Fatalf("expected profile counts on the returned file, got %d/%d", file.RowCount, file.ColCount)
	}
	if file.SizeBytes != 3 {
		t.Fatalf("expected size from storage, got %d", file.SizeBytes)
	}
	if registry.registered == nil || registry.registered.Status != domain.StatusRawUploaded {
		t.Fatalf("expected registration in raw_uploaded, got %+v", registry.registered)
	}
	if registry.profiled == nil {
		t.Fatalf("expected MarkProfiled call")
	}
	if !strings.Contains(storage.savedKey, "_customers_v1.csv") {
		t.Fatalf("expected sanitized storage key, got %s", storage.savedKey)
	}
	if queue.fileID != file.FileID {
		t.Fatalf("expected queued file id %s, got %s", file.FileID, queue.fileID)
	}
}

func TestUploadRejectsUnknownEntityType(t *testing.T) {
	storage := &ingestStorageFake{}
	uc := NewIngestFileUseCase(&ingestRegistryFake{}, storage, &ingestReaderFake{}, &ingestQueueFake{})

	_, err := uc.Upload(context.Background(), "x.csv", "invoices", bytes.NewBufferString("a"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if storage.savedKey != "" {
		t.Fatalf("expected nothing stored, got key %s", storage.savedKey)
	}
}

func TestUploadMarksErrorWhenProfilingFails(t *testing.T) {
	registry := &ingestRegistryFake{}
	queue := &ingestQueueFake{}
	reader := &ingestReaderFake{err: errors.New("not tabular")}
	uc := NewIngestFileUseCase(registry, &ingestStorageFake{}, reader, queue)

	_, err := uc.Upload(context.Background(), "x.csv", "customer", bytes.NewBufferString("a"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(registry.errorReason, "not tabular") {
		t.Fatalf("expected error reason recorded, got %q", registry.errorReason)
	}
	if queue.fileID != "" {
		t.Fatalf("expected no publish for a failed upload")
	}
}

func TestRequeueProfiledFilePublishes(t *testing.T) {
	registry := &ingestRegistryFake{file: &domain.SourceFile{FileID: "f1", Status: domain.StatusProfiled}}
	queue := &ingestQueueFake{}
	uc := NewIngestFileUseCase(registry, &ingestStorageFake{}, &ingestReaderFake{}, queue)

	file, err := uc.Requeue(context.Background(), "f1")
	if err != nil {
		t.Fatalf("Requeue() error = %v", err)
	}
	if queue.fileID != "f1" || file.FileID != "f1" {
		t.Fatalf("expected f1 requeued, got queue=%s file=%s", queue.fileID, file.FileID)
	}
}

func TestRequeueWhileProcessingConflicts(t *testing.T) {
	registry := &ingestRegistryFake{file: &domain.SourceFile{FileID: "f1", Status: domain.StatusProcessing}}
	uc := NewIngestFileUseCase(registry, &ingestStorageFake{}, &ingestReaderFake{}, &ingestQueueFake{})

	_, err := uc.Requeue(context.Background(), "f1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRequeueErroredFileRejected(t *testing.T) {
	registry := &ingestRegistryFake{file: &domain.SourceFile{FileID: "f1", Status: domain.StatusError}}
	uc := NewIngestFileUseCase(registry, &ingestStorageFake{}, &ingestReaderFake{}, &ingestQueueFake{})

	_, err := uc.Requeue(context.Background(), "f1")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a terminal file, got %v", err)
	}
}
