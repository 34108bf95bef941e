package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/ports"
)

type IngestFileUseCase struct {
	registry ports.FileRegistry
	storage  ports.BlobStorage
	reader   ports.TabularReader
	queue    ports.MessageQueue
}

func NewIngestFileUseCase(
	registry ports.FileRegistry,
	storage ports.BlobStorage,
	reader ports.TabularReader,
	queue ports.MessageQueue,
) *IngestFileUseCase {
	return &IngestFileUseCase{
		registry: registry,
		storage:  storage,
		reader:   reader,
		queue:    queue,
	}
}

// Upload stores the raw file, registers it, profiles it and enqueues it for
// processing. The file leaves this method either profiled (and queued) or in
// the error state with the reason recorded.
func (uc *IngestFileUseCase) Upload(
	ctx context.Context,
	filename, entityType string,
	body io.Reader,
) (*domain.SourceFile, error) {
	entity, err := domain.ParseEntityType(entityType)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	size, err := uc.storage.Save(ctx, storageKey, body)
	if err != nil {
		return nil, fmt.Errorf("save to blob storage: %w", err)
	}

	file := &domain.SourceFile{
		FileID:       id,
		Filename:     filename,
		StorageKey:   storageKey,
		EntityType:   entity,
		Status:       domain.StatusRawUploaded,
		SizeBytes:    size,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := uc.registry.Register(ctx, file); err != nil {
		return nil, fmt.Errorf("register source file: %w", err)
	}

	profile, err := uc.profile(ctx, file)
	if err != nil {
		if markErr := uc.registry.MarkError(ctx, file.FileID, err.Error()); markErr != nil {
			return nil, fmt.Errorf("%w; mark error status: %v", err, markErr)
		}
		return nil, err
	}
	if err := uc.registry.MarkProfiled(ctx, file.FileID, profile); err != nil {
		return nil, fmt.Errorf("mark profiled: %w", err)
	}
	file.Status = domain.StatusProfiled
	file.RowCount = profile.RowCount
	file.ColCount = profile.ColCount
	file.DelimiterGuess = profile.DelimiterGuess
	file.EncodingGuess = profile.EncodingGuess

	if err := uc.queue.PublishFileRegistered(ctx, file.FileID); err != nil {
		return nil, fmt.Errorf("publish file-registered event: %w", err)
	}

	return file, nil
}

// Requeue re-publishes the processing event for an already profiled or
// processed file. Files mid-claim or in the terminal error state are not
// requeued.
func (uc *IngestFileUseCase) Requeue(ctx context.Context, fileID string) (*domain.SourceFile, error) {
	file, err := uc.registry.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("fetch source file: %w", err)
	}

	switch file.Status {
	case domain.StatusProfiled, domain.StatusProcessed:
	case domain.StatusProcessing:
		return nil, domain.WrapError(domain.ErrConflict, "requeue file", errors.New("a batch is processing the file"))
	default:
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"requeue file",
			fmt.Errorf("file status %q cannot be requeued", file.Status),
		)
	}

	if err := uc.queue.PublishFileRegistered(ctx, file.FileID); err != nil {
		return nil, fmt.Errorf("publish file-registered event: %w", err)
	}
	return file, nil
}

func (uc *IngestFileUseCase) profile(ctx context.Context, file *domain.SourceFile) (domain.FileProfile, error) {
	rc, err := uc.storage.Open(ctx, file.StorageKey)
	if err != nil {
		return domain.FileProfile{}, fmt.Errorf("open stored file: %w", err)
	}
	defer rc.Close()

	_, profile, err := uc.reader.Read(ctx, file.Filename, rc)
	if err != nil {
		return domain.FileProfile{}, fmt.Errorf("profile file: %w", err)
	}
	return profile, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "upload.bin"
	}
	return base
}
