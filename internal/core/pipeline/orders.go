package pipeline

import (
	"sort"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

// AssembleOrders derives one order row per distinct order id from its items.
// The customer comes from the item with the smallest line id, the date is
// the earliest item date, statuses are the most frequent known value, and
// amounts are summed with net = gross - discount. Passing every stored item
// of an order makes the result independent of which batch touched it last.
func AssembleOrders(items []domain.CanonicalOrderItem, now time.Time) []domain.CanonicalOrder {
	groups := make(map[string][]domain.CanonicalOrderItem)
	for _, it := range items {
		groups[it.OrderID] = append(groups[it.OrderID], it)
	}

	orderIDs := make([]string, 0, len(groups))
	for id := range groups {
		orderIDs = append(orderIDs, id)
	}
	sort.Strings(orderIDs)

	orders := make([]domain.CanonicalOrder, 0, len(groups))
	for _, orderID := range orderIDs {
		group := groups[orderID]
		sort.Slice(group, func(i, j int) bool {
			return group[i].OrderItemID < group[j].OrderItemID
		})

		order := domain.CanonicalOrder{
			OrderID:        orderID,
			CustomerID:     group[0].CustomerID,
			CustomerOrphan: group[0].CustomerOrphan,
			ItemCount:      len(group),
			UpdatedAt:      now,
		}
		var deliveries, payments []string
		for _, it := range group {
			if it.OrderDate != nil && (order.OrderDate == nil || it.OrderDate.Before(*order.OrderDate)) {
				d := *it.OrderDate
				order.OrderDate = &d
			}
			deliveries = append(deliveries, it.DeliveryStatus)
			payments = append(payments, it.PaymentStatus)
			order.ShippingTotal += it.LineShipping
			order.TaxTotal += it.LineTax
			order.DiscountTotal += it.LineDiscount
			order.GrossTotal += it.LineTotal
		}
		order.NetTotal = order.GrossTotal - order.DiscountTotal
		order.Status = modalStatus(deliveries)
		order.PaymentStatus = modalStatus(payments)
		orders = append(orders, order)
	}
	return orders
}

// modalStatus picks the most frequent known status; ties break to the
// lexically smallest so the outcome never depends on item order. The unknown
// bucket only wins when nothing else is present.
func modalStatus(values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		if v == "" || v == "UNKNOWN" {
			continue
		}
		counts[v]++
	}
	best, bestCount := "", 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && (best == "" || v < best)) {
			best, bestCount = v, n
		}
	}
	if best == "" {
		return "UNKNOWN"
	}
	return best
}
