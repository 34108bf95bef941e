package domain

import "time"

type ReasonCode string

const (
	ReasonMissingIdentity    ReasonCode = "missing_identity"
	ReasonMissingOrderRef    ReasonCode = "missing_order_ref"
	ReasonMissingCustomerRef ReasonCode = "missing_customer_ref"
	ReasonMissingProductRef  ReasonCode = "missing_product_ref"
	ReasonMissingQuantity    ReasonCode = "missing_quantity"
	ReasonInvalidQuantity    ReasonCode = "invalid_quantity"
	ReasonNegativeUnitPrice  ReasonCode = "negative_unit_price"
	ReasonEmptyRecord        ReasonCode = "empty_record"
)

// RejectedRow records one input row that failed required-field validation.
// Rejections never abort a batch.
type RejectedRow struct {
	Index     int        `json:"index"`
	SourceRef string     `json:"source_ref,omitempty"`
	Reason    ReasonCode `json:"reason"`
	Detail    string     `json:"detail,omitempty"`
}

// QualityReport is the per-batch data-quality summary: null rates, rejected
// rows, orphaned references, and the reconciliation side effects that are
// reported rather than raised.
type QualityReport struct {
	EntityType         EntityType     `json:"entity_type"`
	InputRows          int            `json:"input_rows"`
	CanonicalRows      int            `json:"canonical_rows"`
	RejectedRows       int            `json:"rejected_rows"`
	NullCounts         map[string]int `json:"null_counts,omitempty"`
	OrphanCustomers    int            `json:"orphan_customers"`
	OrphanProducts     int            `json:"orphan_products"`
	IdentityMerges     int            `json:"identity_merges"`
	IdentityConflicts  int            `json:"identity_conflicts"`
	ClampedValues      int            `json:"clamped_values"`
	TotalDiscrepancies int            `json:"total_discrepancies"`
}

func (r *QualityReport) CountNull(column string) {
	if r.NullCounts == nil {
		r.NullCounts = make(map[string]int)
	}
	r.NullCounts[column]++
}

func (r *QualityReport) OrphanCount() int {
	return r.OrphanCustomers + r.OrphanProducts
}

// BatchReport is the persisted form of one run's output summary, keyed by
// file so reprocessing replaces rather than accumulates.
type BatchReport struct {
	FileID     string        `json:"file_id"`
	BatchID    string        `json:"batch_id"`
	EntityType EntityType    `json:"entity_type"`
	Quality    QualityReport `json:"quality"`
	Rejected   []RejectedRow `json:"rejected,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
