package domain

// Batch is the unit of atomic commit: every canonical row and alias binding
// produced from one run over one source file, plus its report. The store
// commits all of it together with the registry transition to processed, or
// none of it.
type Batch struct {
	FileID     string
	BatchID    string
	EntityType EntityType

	Customers       []CanonicalCustomer
	CustomerAliases map[string]string

	Products       []CanonicalProduct
	ProductAliases map[string]string

	OrderItems []CanonicalOrderItem

	Report BatchReport
}

func (b *Batch) Empty() bool {
	return len(b.Customers) == 0 && len(b.Products) == 0 && len(b.OrderItems) == 0
}
