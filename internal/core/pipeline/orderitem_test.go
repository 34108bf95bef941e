package pipeline

import (
	"reflect"
	"testing"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/normalize"
)

func newOrderItemPipeline(now time.Time) *OrderItemPipeline {
	p := NewOrderItemPipeline(normalize.DefaultCatalog())
	p.now = func() time.Time { return now }
	return p
}

func knownRefs() *domain.ReferenceSnapshot {
	refs := domain.NewReferenceSnapshot()
	refs.Customers.AddID("CUST_0042")
	refs.Products.AddID("ITM_0007")
	refs.Products.BindFacet("pnum:7", "ITM_0007")
	return refs
}

func TestOrderItemTransformResolvesReferences(t *testing.T) {
	p := newOrderItemPipeline(time.Now())

	out := p.Transform(domain.EntityOrderItemsUnstructured, "orders.json", []domain.RawRecord{
		rec(0, map[string]string{
			"ord_id":     "ORD_1001",
			"cust_id":    "cli_0042",
			"product_id": "7",
			"qty":        "3",
			"price":      "10.50",
		}),
	}, knownRefs(), nil)

	if len(out.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(out.Items))
	}
	item := out.Items[0]
	if item.CustomerID != "CUST_0042" || item.CustomerOrphan {
		t.Fatalf("customer = %q orphan=%v, want CLI_ ref resolved", item.CustomerID, item.CustomerOrphan)
	}
	if item.ProductID != "ITM_0007" || item.ProductOrphan {
		t.Fatalf("product = %q orphan=%v, want numeric alias resolved", item.ProductID, item.ProductOrphan)
	}
	if item.LineTotal != 31.50 {
		t.Fatalf("line total = %v, want quantity * unit price", item.LineTotal)
	}
}

func TestOrderItemTransformFlagsOrphansInsteadOfDropping(t *testing.T) {
	p := newOrderItemPipeline(time.Now())

	out := p.Transform(domain.EntityOrderItemsUnstructured, "orders.json", []domain.RawRecord{
		rec(0, map[string]string{
			"ord_id":     "ORD_1002",
			"cust_id":    "CUST_9999",
			"product_id": "ITM_9999",
			"qty":        "1",
		}),
	}, knownRefs(), nil)

	if len(out.Items) != 1 {
		t.Fatalf("items = %d, want the orphan row kept", len(out.Items))
	}
	item := out.Items[0]
	if !item.CustomerOrphan || !item.ProductOrphan {
		t.Fatalf("orphan flags = %v/%v, want both set", item.CustomerOrphan, item.ProductOrphan)
	}
	if item.CustomerID != "CUST_9999" || item.ProductID != "ITM_9999" {
		t.Fatalf("ids = %q/%q, want the canonicalized refs preserved", item.CustomerID, item.ProductID)
	}
	if out.Report.OrphanCustomers != 1 || out.Report.OrphanProducts != 1 {
		t.Fatalf("orphan counts = %d/%d, want 1/1", out.Report.OrphanCustomers, out.Report.OrphanProducts)
	}
}

func TestOrderItemTransformRejectsMissingAndInvalidRows(t *testing.T) {
	p := newOrderItemPipeline(time.Now())

	cases := []struct {
		name   string
		fields map[string]string
		reason domain.ReasonCode
	}{
		{"no order ref", map[string]string{"cust_id": "CUST_0042", "product_id": "ITM_0007", "qty": "1"}, domain.ReasonMissingOrderRef},
		{"no customer ref", map[string]string{"ord_id": "ORD_1", "product_id": "ITM_0007", "qty": "1"}, domain.ReasonMissingCustomerRef},
		{"no product ref", map[string]string{"ord_id": "ORD_1", "cust_id": "CUST_0042", "qty": "1"}, domain.ReasonMissingProductRef},
		{"no quantity", map[string]string{"ord_id": "ORD_1", "cust_id": "CUST_0042", "product_id": "ITM_0007"}, domain.ReasonMissingQuantity},
		{"zero quantity", map[string]string{"ord_id": "ORD_1", "cust_id": "CUST_0042", "product_id": "ITM_0007", "qty": "0"}, domain.ReasonInvalidQuantity},
		{"garbage quantity", map[string]string{"ord_id": "ORD_1", "cust_id": "CUST_0042", "product_id": "ITM_0007", "qty": "lots"}, domain.ReasonInvalidQuantity},
		{"negative price", map[string]string{"ord_id": "ORD_1", "cust_id": "CUST_0042", "product_id": "ITM_0007", "qty": "1", "price": "-5"}, domain.ReasonNegativeUnitPrice},
	}
	for _, c := range cases {
		out := p.Transform(domain.EntityOrderItemsUnstructured, "orders.json", []domain.RawRecord{rec(0, c.fields)}, knownRefs(), nil)
		if len(out.Items) != 0 {
			t.Fatalf("%s: row was kept", c.name)
		}
		if len(out.Rejected) != 1 || out.Rejected[0].Reason != c.reason {
			t.Fatalf("%s: rejected = %+v, want reason %s", c.name, out.Rejected, c.reason)
		}
	}
}

func TestOrderItemTransformReconciliationDialect(t *testing.T) {
	p := newOrderItemPipeline(time.Now())

	out := p.Transform(domain.EntityOrderItemsReconciliation, "recon.csv", []domain.RawRecord{
		rec(0, map[string]string{
			"transaction_ref":  "ord_2001",
			"client_reference": "CLI_0042",
			"item_reference":   "ITM_0007",
			"transaction_date": "2024-03-04",
			"quantity_ordered": "2",
			"unit_cost":        "$10.50",
			"total_value":      "21.00",
			"discount_applied": "1.00",
			"tax_amount":       "1.68",
			"shipping_fee":     "4.99",
			"payment_status":   "completed",
			"delivery_status":  "in_transit",
			"notes_comments":   "rush order",
		}),
	}, knownRefs(), nil)

	if len(out.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(out.Items))
	}
	item := out.Items[0]
	if item.OrderID != "ORD_2001" {
		t.Fatalf("order id = %q", item.OrderID)
	}
	if item.CustomerID != "CUST_0042" {
		t.Fatalf("customer id = %q, want client reference canonicalized", item.CustomerID)
	}
	if item.UnitPrice != 10.50 || item.LineTotal != 21.00 {
		t.Fatalf("price/total = %v/%v", item.UnitPrice, item.LineTotal)
	}
	if item.LineDiscount != 1.00 || item.LineTax != 1.68 || item.LineShipping != 4.99 {
		t.Fatalf("money fields = %v/%v/%v", item.LineDiscount, item.LineTax, item.LineShipping)
	}
	if item.PaymentStatus != "COMPLETED" || item.DeliveryStatus != "IN_TRANSIT" {
		t.Fatalf("statuses = %q/%q", item.PaymentStatus, item.DeliveryStatus)
	}
	if item.OrderDate == nil || !item.OrderDate.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("order date = %v", item.OrderDate)
	}
	if out.Report.TotalDiscrepancies != 0 {
		t.Fatalf("discrepancies = %d, want provided total within tolerance", out.Report.TotalDiscrepancies)
	}
}

func TestOrderItemTransformCountsTotalDiscrepancies(t *testing.T) {
	p := newOrderItemPipeline(time.Now())

	out := p.Transform(domain.EntityOrderItemsReconciliation, "recon.csv", []domain.RawRecord{
		rec(0, map[string]string{
			"transaction_ref":  "ORD_2002",
			"client_reference": "CUST_0042",
			"item_reference":   "ITM_0007",
			"quantity_ordered": "3",
			"unit_cost":        "9.99",
			"total_value":      "35.00",
		}),
	}, knownRefs(), nil)

	if len(out.Items) != 1 {
		t.Fatalf("items = %d, want the row kept despite the discrepancy", len(out.Items))
	}
	if out.Report.TotalDiscrepancies != 1 {
		t.Fatalf("discrepancies = %d, want 1", out.Report.TotalDiscrepancies)
	}
}

func TestOrderItemTransformSynthesizesDistinctLineIDs(t *testing.T) {
	p := newOrderItemPipeline(time.Now())

	out := p.Transform(domain.EntityOrderItemsUnstructured, "orders.json", []domain.RawRecord{
		rec(0, map[string]string{"ord_id": "ORD_1", "cust_id": "CUST_0042", "product_id": "ITM_0007", "qty": "1"}),
		rec(1, map[string]string{"ord_id": "ORD_1", "cust_id": "CUST_0042", "product_id": "ITM_0007", "qty": "2"}),
	}, knownRefs(), nil)

	if len(out.Items) != 2 {
		t.Fatalf("items = %d, want both lines kept", len(out.Items))
	}
	if out.Items[0].OrderItemID == out.Items[1].OrderItemID {
		t.Fatalf("line ids collide: %q", out.Items[0].OrderItemID)
	}
}

func TestOrderItemTransformPrefersSourceLineID(t *testing.T) {
	p := newOrderItemPipeline(time.Now())

	out := p.Transform(domain.EntityOrderItemsUnstructured, "orders.json", []domain.RawRecord{
		rec(0, map[string]string{
			"ord_id":          "ORD_1",
			"cust_id":         "CUST_0042",
			"product_id":      "ITM_0007",
			"qty":             "1",
			"item_identifier": "line-77",
		}),
	}, knownRefs(), nil)

	if out.Items[0].OrderItemID != "LINE-77" {
		t.Fatalf("line id = %q, want the source identifier kept", out.Items[0].OrderItemID)
	}
}

func TestOrderItemTransformSameFileSameOutput(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := newOrderItemPipeline(now)
	records := []domain.RawRecord{
		rec(0, map[string]string{"ord_id": "ORD_1", "cust_id": "CUST_0042", "product_id": "ITM_0007", "qty": "1", "price": "5"}),
		rec(1, map[string]string{"ord_id": "ORD_2", "cust_id": "CUST_9999", "product_id": "7", "qty": "4", "price": "2.5"}),
	}

	a := p.Transform(domain.EntityOrderItemsUnstructured, "orders.json", records, knownRefs(), nil)
	b := p.Transform(domain.EntityOrderItemsUnstructured, "orders.json", records, knownRefs(), nil)

	if !reflect.DeepEqual(a.Items, b.Items) {
		t.Fatalf("reprocessing the same file produced different items")
	}
	if !reflect.DeepEqual(a.Report, b.Report) {
		t.Fatalf("reprocessing the same file produced a different report")
	}
}
