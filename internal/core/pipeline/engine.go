package pipeline

import (
	"fmt"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/normalize"
)

// Result is the uniform output of one batch transformation; the sections the
// entity type does not produce stay empty.
type Result struct {
	Customers       []domain.CanonicalCustomer
	CustomerAliases map[string]string
	Products        []domain.CanonicalProduct
	ProductAliases  map[string]string
	OrderItems      []domain.CanonicalOrderItem
	Rejected        []domain.RejectedRow
	Report          domain.QualityReport
}

// Engine bundles the entity pipelines behind a single transform entry point
// keyed by entity type. It is stateless across calls and safe for concurrent
// use.
type Engine struct {
	customers *CustomerPipeline
	products  *ProductPipeline
	items     *OrderItemPipeline
}

func NewEngine(catalog *normalize.Catalog) *Engine {
	return &Engine{
		customers: NewCustomerPipeline(catalog),
		products:  NewProductPipeline(catalog),
		items:     NewOrderItemPipeline(catalog),
	}
}

// TargetFields returns the canonical schema for an entity type, the field
// names a mapping suggester may bind source columns to.
func (e *Engine) TargetFields(entity domain.EntityType) []string {
	switch entity {
	case domain.EntityCustomer:
		return e.customers.TargetFields()
	case domain.EntityProduct:
		return e.products.TargetFields()
	default:
		return e.items.TargetFields(entity)
	}
}

// emptyRecord reports whether a row carries no usable cell at all. Such rows
// are rejected up front so their index still shows up in the report.
func emptyRecord(rec domain.RawRecord) bool {
	for _, v := range rec.Fields {
		if !normalize.IsMissing(v) {
			return false
		}
	}
	return true
}

func (e *Engine) Transform(
	entity domain.EntityType,
	sourceFile string,
	records []domain.RawRecord,
	refs *domain.ReferenceSnapshot,
	hints map[string]string,
) (*Result, error) {
	switch entity {
	case domain.EntityCustomer:
		out := e.customers.Transform(sourceFile, records, refs.Customers, hints)
		return &Result{
			Customers:       out.Customers,
			CustomerAliases: out.Aliases,
			Rejected:        out.Rejected,
			Report:          out.Report,
		}, nil
	case domain.EntityProduct:
		out := e.products.Transform(sourceFile, records, refs.Products, hints)
		return &Result{
			Products:       out.Products,
			ProductAliases: out.Aliases,
			Rejected:       out.Rejected,
			Report:         out.Report,
		}, nil
	case domain.EntityOrderItemsReconciliation, domain.EntityOrderItemsUnstructured:
		out := e.items.Transform(entity, sourceFile, records, refs, hints)
		return &Result{
			OrderItems: out.Items,
			Rejected:   out.Rejected,
			Report:     out.Report,
		}, nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "transform batch", fmt.Errorf("unknown entity type %q", entity))
	}
}
