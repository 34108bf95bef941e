package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/pipeline"
	"github.com/kirillkom/commerce-reconciler/internal/core/ports"
)

type ProcessFileUseCase struct {
	registry  ports.FileRegistry
	store     ports.CanonicalStore
	storage   ports.BlobStorage
	reader    ports.TabularReader
	suggester ports.MappingSuggester
	engine    *pipeline.Engine
}

func NewProcessFileUseCase(
	registry ports.FileRegistry,
	store ports.CanonicalStore,
	storage ports.BlobStorage,
	reader ports.TabularReader,
	suggester ports.MappingSuggester,
	engine *pipeline.Engine,
) *ProcessFileUseCase {
	return &ProcessFileUseCase{
		registry:  registry,
		store:     store,
		storage:   storage,
		reader:    reader,
		suggester: suggester,
		engine:    engine,
	}
}

// ProcessByID runs one reconciliation batch over a registered file: claim,
// read, transform, commit. A claim held elsewhere surfaces as ErrConflict and
// changes nothing. Unreadable input marks the file as errored; a failed
// commit releases the claim back to its prior status so the file can be
// retried.
func (uc *ProcessFileUseCase) ProcessByID(ctx context.Context, fileID string) error {
	file, err := uc.loadFile(ctx, fileID)
	if err != nil {
		return err
	}

	batchID := uuid.NewString()
	prior, err := uc.registry.Claim(ctx, fileID, batchID)
	if err != nil {
		return fmt.Errorf("claim file: %w", err)
	}

	records, err := uc.readRecords(ctx, file)
	if err != nil {
		return uc.failFile(ctx, fileID, err)
	}

	refs, err := uc.loadReferences(ctx, file.EntityType)
	if err != nil {
		return uc.releaseClaim(ctx, fileID, batchID, prior, err)
	}

	hints := uc.suggestMapping(ctx, file.EntityType, records)

	result, err := uc.engine.Transform(file.EntityType, file.Filename, records, refs, hints)
	if err != nil {
		return uc.failFile(ctx, fileID, err)
	}

	batch := uc.assembleBatch(file, batchID, result)
	if err := uc.store.ApplyBatch(ctx, batch); err != nil {
		return uc.releaseClaim(ctx, fileID, batchID, prior, fmt.Errorf("apply batch: %w", err))
	}
	return nil
}

func (uc *ProcessFileUseCase) loadFile(ctx context.Context, fileID string) (*domain.SourceFile, error) {
	file, err := uc.registry.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("fetch source file: %w", err)
	}
	return file, nil
}

func (uc *ProcessFileUseCase) readRecords(ctx context.Context, file *domain.SourceFile) ([]domain.RawRecord, error) {
	rc, err := uc.storage.Open(ctx, file.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	defer rc.Close()

	records, _, err := uc.reader.Read(ctx, file.Filename, rc)
	if err != nil {
		return nil, fmt.Errorf("read tabular input: %w", err)
	}
	return records, nil
}

func (uc *ProcessFileUseCase) loadReferences(ctx context.Context, entity domain.EntityType) (*domain.ReferenceSnapshot, error) {
	refs := domain.NewReferenceSnapshot()
	if entity == domain.EntityCustomer || entity.OrderItems() {
		snap, err := uc.store.CustomerSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("load customer snapshot: %w", err)
		}
		refs.Customers = snap
	}
	if entity == domain.EntityProduct || entity.OrderItems() {
		snap, err := uc.store.ProductSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("load product snapshot: %w", err)
		}
		refs.Products = snap
	}
	return refs, nil
}

// suggestMapping asks the suggester for bindings of the observed columns to
// the entity's target fields. Suggestion failure is never batch failure; the
// built-in alias tables carry the batch alone.
func (uc *ProcessFileUseCase) suggestMapping(ctx context.Context, entity domain.EntityType, records []domain.RawRecord) map[string]string {
	if uc.suggester == nil || len(records) == 0 {
		return nil
	}
	// Union over all records; JSON sources can carry ragged keys.
	set := make(map[string]struct{})
	for _, rec := range records {
		for col := range rec.Fields {
			set[col] = struct{}{}
		}
	}
	columns := make([]string, 0, len(set))
	for col := range set {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	hints, err := uc.suggester.SuggestMapping(ctx, entity, columns, uc.engine.TargetFields(entity))
	if err != nil {
		return nil
	}
	return hints
}

func (uc *ProcessFileUseCase) assembleBatch(file *domain.SourceFile, batchID string, result *pipeline.Result) *domain.Batch {
	return &domain.Batch{
		FileID:          file.FileID,
		BatchID:         batchID,
		EntityType:      file.EntityType,
		Customers:       result.Customers,
		CustomerAliases: result.CustomerAliases,
		Products:        result.Products,
		ProductAliases:  result.ProductAliases,
		OrderItems:      result.OrderItems,
		Report: domain.BatchReport{
			FileID:     file.FileID,
			BatchID:    batchID,
			EntityType: file.EntityType,
			Quality:    result.Report,
			Rejected:   result.Rejected,
			CreatedAt:  time.Now().UTC(),
		},
	}
}

func (uc *ProcessFileUseCase) failFile(ctx context.Context, fileID string, cause error) error {
	if markErr := uc.registry.MarkError(ctx, fileID, cause.Error()); markErr != nil {
		return fmt.Errorf("%w; mark error status: %v", cause, markErr)
	}
	return cause
}

func (uc *ProcessFileUseCase) releaseClaim(ctx context.Context, fileID, batchID string, prior domain.FileStatus, cause error) error {
	if relErr := uc.registry.Release(ctx, fileID, batchID, prior); relErr != nil {
		return fmt.Errorf("%w; release claim: %v", cause, relErr)
	}
	return cause
}
