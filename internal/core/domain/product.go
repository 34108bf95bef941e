package domain

import "time"

// CanonicalProduct is the reconciled product row. Price and StockQuantity are
// never negative after cleaning. Pointer fields distinguish "absent in every
// source" from a legitimate zero.
type CanonicalProduct struct {
	ProductID     string     `json:"product_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	Brand         string     `json:"brand,omitempty"`
	Manufacturer  string     `json:"manufacturer,omitempty"`
	Price         float64    `json:"price"`
	Cost          float64    `json:"cost"`
	WeightKG      *float64   `json:"weight_kg,omitempty"`
	LengthCM      *float64   `json:"length_cm,omitempty"`
	WidthCM       *float64   `json:"width_cm,omitempty"`
	HeightCM      *float64   `json:"height_cm,omitempty"`
	Color         string     `json:"color,omitempty"`
	Size          string     `json:"size,omitempty"`
	StockQuantity int        `json:"stock_quantity"`
	ReorderLevel  int        `json:"reorder_level"`
	SupplierID    string     `json:"supplier_id,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	CreatedDate   *time.Time `json:"created_date,omitempty"`
	SourceRef     string     `json:"source_ref,omitempty"`
	SourceFile    string     `json:"source_file"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
