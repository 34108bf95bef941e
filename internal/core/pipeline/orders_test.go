package pipeline

import (
	"reflect"
	"testing"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

func d(t time.Time) *time.Time { return &t }

func TestAssembleOrdersRollsUpItems(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.CanonicalOrderItem{
		{
			OrderItemID: "ORD_1~ITM_0007~1", OrderID: "ORD_1", CustomerID: "CUST_0042",
			Quantity: 2, UnitPrice: 10.5, LineTotal: 21, LineDiscount: 1, LineTax: 2, LineShipping: 5,
			DeliveryStatus: "DELIVERED", PaymentStatus: "COMPLETED",
			OrderDate: d(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)),
		},
		{
			OrderItemID: "ORD_1~ITM_0008~1", OrderID: "ORD_1", CustomerID: "CUST_0042",
			Quantity: 1, UnitPrice: 4, LineTotal: 4, LineDiscount: 1, LineTax: 1, LineShipping: 0,
			DeliveryStatus: "DELIVERED", PaymentStatus: "PENDING",
			OrderDate: d(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)),
		},
		{
			OrderItemID: "ORD_2~ITM_0007~1", OrderID: "ORD_2", CustomerID: "CUST_0099",
			Quantity: 1, UnitPrice: 8, LineTotal: 8,
			DeliveryStatus: "PENDING", PaymentStatus: "PENDING",
		},
	}

	orders := AssembleOrders(items, now)

	if len(orders) != 2 {
		t.Fatalf("orders = %d, want 2", len(orders))
	}
	first := orders[0]
	if first.OrderID != "ORD_1" {
		t.Fatalf("orders not sorted by id: %q first", first.OrderID)
	}
	if first.CustomerID != "CUST_0042" || first.ItemCount != 2 {
		t.Fatalf("customer/count = %q/%d", first.CustomerID, first.ItemCount)
	}
	if first.GrossTotal != 25 || first.DiscountTotal != 2 || first.NetTotal != 23 {
		t.Fatalf("totals = gross %v discount %v net %v", first.GrossTotal, first.DiscountTotal, first.NetTotal)
	}
	if first.TaxTotal != 3 || first.ShippingTotal != 5 {
		t.Fatalf("tax/shipping = %v/%v", first.TaxTotal, first.ShippingTotal)
	}
	if first.OrderDate == nil || !first.OrderDate.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("order date = %v, want the earliest item date", first.OrderDate)
	}
	if first.Status != "DELIVERED" {
		t.Fatalf("status = %q, want the modal delivery status", first.Status)
	}
	if first.PaymentStatus != "COMPLETED" {
		t.Fatalf("payment = %q, want the tie broken lexically", first.PaymentStatus)
	}
}

func TestAssembleOrdersIndependentOfItemOrder(t *testing.T) {
	now := time.Now().UTC()
	items := []domain.CanonicalOrderItem{
		{OrderItemID: "A~1", OrderID: "A", CustomerID: "C1", LineTotal: 5, DeliveryStatus: "SHIPPED"},
		{OrderItemID: "A~2", OrderID: "A", CustomerID: "C2", LineTotal: 7, DeliveryStatus: "DELIVERED"},
		{OrderItemID: "B~1", OrderID: "B", CustomerID: "C3", LineTotal: 1, DeliveryStatus: "PENDING"},
	}
	shuffled := []domain.CanonicalOrderItem{items[2], items[0], items[1]}

	a := AssembleOrders(items, now)
	b := AssembleOrders(shuffled, now)

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("roll-up depends on item order:\n%+v\nvs\n%+v", a, b)
	}
	if a[0].CustomerID != "C1" {
		t.Fatalf("customer = %q, want the smallest line id to pick it", a[0].CustomerID)
	}
}

func TestAssembleOrdersKeepsOrphanFlag(t *testing.T) {
	orders := AssembleOrders([]domain.CanonicalOrderItem{
		{OrderItemID: "A~1", OrderID: "A", CustomerID: "CUST_9999", CustomerOrphan: true, LineTotal: 3},
	}, time.Now())

	if !orders[0].CustomerOrphan {
		t.Fatalf("orphan flag lost in the roll-up")
	}
}

func TestAssembleOrdersUnknownStatusOnlyWinsAlone(t *testing.T) {
	orders := AssembleOrders([]domain.CanonicalOrderItem{
		{OrderItemID: "A~1", OrderID: "A", DeliveryStatus: "UNKNOWN", PaymentStatus: "UNKNOWN"},
		{OrderItemID: "A~2", OrderID: "A", DeliveryStatus: "UNKNOWN", PaymentStatus: "UNKNOWN"},
		{OrderItemID: "A~3", OrderID: "A", DeliveryStatus: "SHIPPED", PaymentStatus: "UNKNOWN"},
	}, time.Now())

	if orders[0].Status != "SHIPPED" {
		t.Fatalf("status = %q, want a known value to beat the unknown bucket", orders[0].Status)
	}
	if orders[0].PaymentStatus != "UNKNOWN" {
		t.Fatalf("payment = %q, want unknown only when nothing else exists", orders[0].PaymentStatus)
	}
}
