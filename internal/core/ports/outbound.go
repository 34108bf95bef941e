package ports

import (
	"context"
	"io"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

// FileRegistry persists the source-file lifecycle. Claim is the exclusive
// transition into processing: it returns the status the file held before, so
// a failed commit can put it back, and domain.ErrConflict when another batch
// holds the file.
type FileRegistry interface {
	Register(ctx context.Context, file *domain.SourceFile) error
	GetByID(ctx context.Context, id string) (*domain.SourceFile, error)
	List(ctx context.Context, limit int) ([]domain.SourceFile, error)
	MarkProfiled(ctx context.Context, id string, profile domain.FileProfile) error
	Claim(ctx context.Context, id, batchID string) (domain.FileStatus, error)
	Release(ctx context.Context, id, batchID string, prior domain.FileStatus) error
	MarkError(ctx context.Context, id, reason string) error
}

// CanonicalStore persists reconciled entities and serves the read views the
// pipelines resolve against. ApplyBatch commits a whole batch, its aliases,
// the derived orders, the report and the registry transition in one
// transaction or not at all.
type CanonicalStore interface {
	ApplyBatch(ctx context.Context, batch *domain.Batch) error
	CustomerSnapshot(ctx context.Context) (*domain.IdentitySnapshot, error)
	ProductSnapshot(ctx context.Context) (*domain.IdentitySnapshot, error)
	ListCustomers(ctx context.Context, limit int) ([]domain.CanonicalCustomer, error)
	ListProducts(ctx context.Context, limit int) ([]domain.CanonicalProduct, error)
	ListOrders(ctx context.Context, limit int) ([]domain.CanonicalOrder, error)
	ReportByFileID(ctx context.Context, fileID string) (*domain.BatchReport, error)
}

// BlobStorage stores raw uploads. Save reports the byte count written.
type BlobStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes file-registered events.
type MessageQueue interface {
	PublishFileRegistered(ctx context.Context, fileID string) error
	SubscribeFileRegistered(ctx context.Context, handler func(context.Context, string) error) error
}

// TabularReader decodes a stored upload into raw records plus the cheap
// profile (row/column counts, delimiter and encoding guesses). The format is
// picked from the filename extension.
type TabularReader interface {
	Read(ctx context.Context, filename string, r io.Reader) ([]domain.RawRecord, domain.FileProfile, error)
}

// MappingSuggester proposes source-column to canonical-field bindings for
// headers the built-in alias tables do not cover. Callers treat any error as
// "no suggestions"; a dead suggester never fails a batch.
type MappingSuggester interface {
	SuggestMapping(ctx context.Context, entity domain.EntityType, columns, targets []string) (map[string]string, error)
}
