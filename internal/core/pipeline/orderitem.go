package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/identity"
	"github.com/kirillkom/commerce-reconciler/internal/core/normalize"
)

// totalTolerance is how far a source-provided line total may drift from
// quantity * unit_price before it counts as a discrepancy.
const totalTolerance = 0.01

type OrderItemResult struct {
	Items    []domain.CanonicalOrderItem
	Rejected []domain.RejectedRow
	Report   domain.QualityReport
}

// OrderItemPipeline reconciles order lines from both source dialects: the
// reconciliation extract (transaction_ref, client_reference, quantity_ordered
// and friends) and the loosely structured one (ord_id, cust_id, qty). The
// dialects differ only in their field maps; everything downstream is shared.
type OrderItemPipeline struct {
	catalog *normalize.Catalog
	recon   *FieldMap
	loose   *FieldMap
	now     func() time.Time
}

func NewOrderItemPipeline(catalog *normalize.Catalog) *OrderItemPipeline {
	return &OrderItemPipeline{
		catalog: catalog,
		recon:   NewFieldMap(reconciliationAliases()),
		loose:   NewFieldMap(unstructuredAliases()),
		now:     time.Now,
	}
}

func (p *OrderItemPipeline) TargetFields(entity domain.EntityType) []string {
	return p.dialect(entity).Fields()
}

func (p *OrderItemPipeline) dialect(entity domain.EntityType) *FieldMap {
	if entity == domain.EntityOrderItemsUnstructured {
		return p.loose
	}
	return p.recon
}

// Transform validates and normalizes order lines. Rows missing an order,
// customer or product reference, or a usable positive quantity, are
// rejected. References that resolve to no known customer or product keep the
// row; the orphan flag is set and counted instead.
func (p *OrderItemPipeline) Transform(entity domain.EntityType, sourceFile string, records []domain.RawRecord, refs *domain.ReferenceSnapshot, hints map[string]string) *OrderItemResult {
	fields := p.dialect(entity).WithHints(hints)
	result := &OrderItemResult{
		Report: domain.QualityReport{
			EntityType: entity,
			InputRows:  len(records),
		},
	}

	now := p.now().UTC()
	lineSeq := make(map[string]int)
	for _, rec := range records {
		item, rejected := p.transformRow(fields, rec, refs, lineSeq, sourceFile, now, &result.Report)
		if rejected != nil {
			result.Rejected = append(result.Rejected, *rejected)
			continue
		}
		result.Items = append(result.Items, item)
	}

	sort.Slice(result.Items, func(i, j int) bool {
		return result.Items[i].OrderItemID < result.Items[j].OrderItemID
	})
	result.Report.CanonicalRows = len(result.Items)
	result.Report.RejectedRows = len(result.Rejected)
	return result
}

func (p *OrderItemPipeline) transformRow(
	fields *FieldMap,
	rec domain.RawRecord,
	refs *domain.ReferenceSnapshot,
	lineSeq map[string]int,
	sourceFile string,
	now time.Time,
	report *domain.QualityReport,
) (domain.CanonicalOrderItem, *domain.RejectedRow) {
	reject := func(reason domain.ReasonCode, detail string) (domain.CanonicalOrderItem, *domain.RejectedRow) {
		return domain.CanonicalOrderItem{}, &domain.RejectedRow{
			Index:  rec.Index,
			Reason: reason,
			Detail: detail,
		}
	}

	if emptyRecord(rec) {
		return reject(domain.ReasonEmptyRecord, "")
	}

	orderID := normalize.Clean(fields.Value(rec, "order_ref"), normalize.CaseUpper)
	if orderID == "" {
		return reject(domain.ReasonMissingOrderRef, "order reference is required")
	}

	customerRef := identity.CanonicalizeCustomerRef(fields.Value(rec, "customer_ref").Text())
	if customerRef == "" {
		return reject(domain.ReasonMissingCustomerRef, "customer reference is required")
	}

	productRef, productNum := identity.CanonicalizeProductRef(fields.Value(rec, "product_ref").Text())
	if productRef == "" {
		return reject(domain.ReasonMissingProductRef, "product reference is required")
	}

	qtyVal := fields.Value(rec, "quantity")
	if normalize.IsMissing(qtyVal) {
		return reject(domain.ReasonMissingQuantity, "quantity is required")
	}
	qty, ok := normalize.ParseInt(qtyVal)
	if !ok || qty <= 0 {
		return reject(domain.ReasonInvalidQuantity, fmt.Sprintf("quantity %q is not a positive integer", qtyVal.Text()))
	}

	unitPrice := 0.0
	if f, ok := normalize.ParseDecimal(fields.Value(rec, "unit_price")); ok {
		if f < 0 {
			return reject(domain.ReasonNegativeUnitPrice, fmt.Sprintf("unit price %v is negative", f))
		}
		unitPrice = f
	}

	customerID, customerOrphan := resolveCustomerRef(customerRef, refs.Customers)
	if customerOrphan {
		report.OrphanCustomers++
	}
	productID, productOrphan := resolveProductRef(productRef, productNum, refs.Products)
	if productOrphan {
		report.OrphanProducts++
	}

	item := domain.CanonicalOrderItem{
		OrderItemID:    p.lineID(fields, rec, orderID, productRef, lineSeq),
		OrderID:        orderID,
		CustomerID:     customerID,
		ProductID:      productID,
		Quantity:       qty,
		UnitPrice:      unitPrice,
		LineTotal:      float64(qty) * unitPrice,
		PaymentStatus:  p.catalog.NormalizePaymentStatus(fields.Value(rec, "payment_status")),
		DeliveryStatus: p.catalog.NormalizeDeliveryStatus(fields.Value(rec, "delivery_status")),
		Notes:          normalize.Clean(fields.Value(rec, "notes"), normalize.CaseNone),
		CustomerOrphan: customerOrphan,
		ProductOrphan:  productOrphan,
		SourceFile:     sourceFile,
		UpdatedAt:      now,
	}
	if f, ok := normalize.ParseDecimal(fields.Value(rec, "discount")); ok {
		item.LineDiscount = f
	}
	if f, ok := normalize.ParseDecimal(fields.Value(rec, "tax")); ok {
		item.LineTax = f
	}
	if f, ok := normalize.ParseDecimal(fields.Value(rec, "shipping_fee")); ok {
		item.LineShipping = f
	}
	if f, ok := normalize.ParseDecimal(fields.Value(rec, "amount_paid")); ok {
		item.AmountPaid = f
	}
	if t, ok := normalize.ParseDate(fields.Value(rec, "order_date")); ok {
		item.OrderDate = &t
	} else {
		report.CountNull("order_date")
	}

	if provided, ok := normalize.ParseDecimal(fields.Value(rec, "provided_total")); ok {
		if math.Abs(provided-item.LineTotal) > totalTolerance {
			report.TotalDiscrepancies++
		}
	}
	return item, nil
}

// lineID prefers a source-supplied line identifier; otherwise it derives one
// from the order and product refs plus an occurrence ordinal, so repeated
// lines of the same product stay distinct and reprocessing the same file
// yields the same ids.
func (p *OrderItemPipeline) lineID(fields *FieldMap, rec domain.RawRecord, orderID, productRef string, lineSeq map[string]int) string {
	if ref := normalize.Clean(fields.Value(rec, "order_line_ref"), normalize.CaseUpper); ref != "" {
		return ref
	}
	key := orderID + "~" + productRef
	lineSeq[key]++
	return fmt.Sprintf("%s~%d", key, lineSeq[key])
}

func resolveCustomerRef(ref string, snap *domain.IdentitySnapshot) (string, bool) {
	if snap.Has(ref) {
		return ref, false
	}
	if id, ok := snap.LookupFacet(identity.CustomerSourceFacet(ref).Key); ok {
		return id, false
	}
	return ref, true
}

func resolveProductRef(ref, numeric string, snap *domain.IdentitySnapshot) (string, bool) {
	if snap.Has(ref) {
		return ref, false
	}
	if id, ok := snap.LookupFacet(identity.ProductSourceFacet(ref).Key); ok {
		return id, false
	}
	if numeric != "" {
		if id, ok := snap.LookupFacet(identity.ProductNumericFacet(numeric, ref).Key); ok {
			return id, false
		}
	}
	return ref, true
}
