package domain

import "time"

// CanonicalOrderItem is one reconciled order line. FK fields always carry the
// best-known canonical id; when the referenced customer or product does not
// exist the row is kept and the matching orphan flag is set, never dropped.
type CanonicalOrderItem struct {
	OrderItemID    string     `json:"order_item_id"`
	OrderID        string     `json:"order_id"`
	CustomerID     string     `json:"customer_id"`
	ProductID      string     `json:"product_id"`
	Quantity       int        `json:"quantity"`
	UnitPrice      float64    `json:"unit_price"`
	LineTotal      float64    `json:"line_total"`
	LineDiscount   float64    `json:"line_discount"`
	LineTax        float64    `json:"line_tax"`
	LineShipping   float64    `json:"line_shipping"`
	AmountPaid     float64    `json:"amount_paid"`
	PaymentStatus  string     `json:"payment_status,omitempty"`
	DeliveryStatus string     `json:"delivery_status,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	OrderDate      *time.Time `json:"order_date,omitempty"`
	CustomerOrphan bool       `json:"customer_orphan,omitempty"`
	ProductOrphan  bool       `json:"product_orphan,omitempty"`
	SourceFile     string     `json:"source_file"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CanonicalOrder is the per-order roll-up derived from its items: earliest
// item date, modal statuses, summed amounts, net = gross - discount. It is
// recomputed whenever a batch touches the order.
type CanonicalOrder struct {
	OrderID        string     `json:"order_id"`
	CustomerID     string     `json:"customer_id"`
	OrderDate      *time.Time `json:"order_date,omitempty"`
	Status         string     `json:"status,omitempty"`
	PaymentStatus  string     `json:"payment_status,omitempty"`
	ShippingTotal  float64    `json:"shipping_total"`
	TaxTotal       float64    `json:"tax_total"`
	DiscountTotal  float64    `json:"discount_total"`
	GrossTotal     float64    `json:"gross_total"`
	NetTotal       float64    `json:"net_total"`
	ItemCount      int        `json:"item_count"`
	CustomerOrphan bool       `json:"customer_orphan,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
