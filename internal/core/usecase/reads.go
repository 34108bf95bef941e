package usecase

import (
	"context"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/ports"
)

// ReadModelUseCase serves the query side of the API: registry state, batch
// reports and the reconciled entities. It composes the registry and the
// canonical store behind the inbound read interfaces.
type ReadModelUseCase struct {
	registry ports.FileRegistry
	store    ports.CanonicalStore
}

func NewReadModelUseCase(registry ports.FileRegistry, store ports.CanonicalStore) *ReadModelUseCase {
	return &ReadModelUseCase{registry: registry, store: store}
}

func (uc *ReadModelUseCase) GetByID(ctx context.Context, id string) (*domain.SourceFile, error) {
	return uc.registry.GetByID(ctx, id)
}

func (uc *ReadModelUseCase) List(ctx context.Context, limit int) ([]domain.SourceFile, error) {
	return uc.registry.List(ctx, limit)
}

func (uc *ReadModelUseCase) ReportByFileID(ctx context.Context, fileID string) (*domain.BatchReport, error) {
	return uc.store.ReportByFileID(ctx, fileID)
}

func (uc *ReadModelUseCase) ListCustomers(ctx context.Context, limit int) ([]domain.CanonicalCustomer, error) {
	return uc.store.ListCustomers(ctx, limit)
}

func (uc *ReadModelUseCase) ListProducts(ctx context.Context, limit int) ([]domain.CanonicalProduct, error) {
	return uc.store.ListProducts(ctx, limit)
}

func (uc *ReadModelUseCase) ListOrders(ctx context.Context, limit int) ([]domain.CanonicalOrder, error) {
	return uc.store.ListOrders(ctx, limit)
}
