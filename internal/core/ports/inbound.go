package ports

import (
	"context"
	"io"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

// FileIngestor is the inbound contract for upload orchestration.
type FileIngestor interface {
	Upload(ctx context.Context, filename, entityType string, body io.Reader) (*domain.SourceFile, error)
	Requeue(ctx context.Context, fileID string) (*domain.SourceFile, error)
}

// FileProcessor is the inbound contract for asynchronous batch processing.
type FileProcessor interface {
	ProcessByID(ctx context.Context, fileID string) error
}

// FileReader is the inbound read model for registry state and batch reports.
type FileReader interface {
	GetByID(ctx context.Context, id string) (*domain.SourceFile, error)
	List(ctx context.Context, limit int) ([]domain.SourceFile, error)
	ReportByFileID(ctx context.Context, fileID string) (*domain.BatchReport, error)
}

// CanonicalReader is the inbound read model for reconciled entities.
type CanonicalReader interface {
	ListCustomers(ctx context.Context, limit int) ([]domain.CanonicalCustomer, error)
	ListProducts(ctx context.Context, limit int) ([]domain.CanonicalProduct, error)
	ListOrders(ctx context.Context, limit int) ([]domain.CanonicalOrder, error)
}
