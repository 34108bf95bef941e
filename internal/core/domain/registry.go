package domain

import (
	"fmt"
	"time"
)

type FileStatus string

const (
	StatusRawUploaded FileStatus = "raw_uploaded"
	StatusProfiled    FileStatus = "profiled"
	StatusProcessing  FileStatus = "processing"
	StatusProcessed   FileStatus = "processed"
	StatusError       FileStatus = "error"
)

type EntityType string

const (
	EntityCustomer                 EntityType = "customer"
	EntityProduct                  EntityType = "product"
	EntityOrderItemsReconciliation EntityType = "order_items_reconciliation"
	EntityOrderItemsUnstructured   EntityType = "order_items_unstructured"
)

func ParseEntityType(raw string) (EntityType, error) {
	switch EntityType(raw) {
	case EntityCustomer, EntityProduct, EntityOrderItemsReconciliation, EntityOrderItemsUnstructured:
		return EntityType(raw), nil
	default:
		return "", WrapError(ErrInvalidInput, "parse entity type", fmt.Errorf("unknown entity type %q", raw))
	}
}

func (e EntityType) OrderItems() bool {
	return e == EntityOrderItemsReconciliation || e == EntityOrderItemsUnstructured
}

// SourceFile is a registry row tracking one uploaded file through its
// lifecycle: raw_uploaded -> profiled -> processing -> processed | error.
// Processing is an exclusive claim; error is terminal with a reason.
type SourceFile struct {
	FileID         string     `json:"file_id"`
	Filename       string     `json:"filename"`
	StorageKey     string     `json:"storage_key"`
	EntityType     EntityType `json:"entity_type"`
	Status         FileStatus `json:"status"`
	SizeBytes      int64      `json:"size_bytes"`
	RowCount       int        `json:"row_count"`
	ColCount       int        `json:"col_count"`
	DelimiterGuess string     `json:"delimiter_guess,omitempty"`
	EncodingGuess  string     `json:"encoding_guess,omitempty"`
	BatchID        string     `json:"batch_id,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	RegisteredAt   time.Time  `json:"registered_at"`
	ProfiledAt     *time.Time `json:"profiled_at,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FileProfile captures what cheap inspection of an upload can tell before any
// pipeline runs.
type FileProfile struct {
	RowCount       int    `json:"row_count"`
	ColCount       int    `json:"col_count"`
	DelimiterGuess string `json:"delimiter_guess,omitempty"`
	EncodingGuess  string `json:"encoding_guess,omitempty"`
}
