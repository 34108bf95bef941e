package domain

// IdentitySnapshot is the read view identity resolution runs against:
// canonical ids already in the store plus the facet-key bindings accumulated
// by earlier runs (source refs, emails, name composites).
type IdentitySnapshot struct {
	IDs    map[string]struct{}
	Facets map[string]string
}

func NewIdentitySnapshot() *IdentitySnapshot {
	return &IdentitySnapshot{
		IDs:    make(map[string]struct{}),
		Facets: make(map[string]string),
	}
}

func (s *IdentitySnapshot) Has(id string) bool {
	_, ok := s.IDs[id]
	return ok
}

func (s *IdentitySnapshot) LookupFacet(key string) (string, bool) {
	id, ok := s.Facets[key]
	return id, ok
}

func (s *IdentitySnapshot) AddID(id string) {
	s.IDs[id] = struct{}{}
}

func (s *IdentitySnapshot) BindFacet(key, id string) {
	s.Facets[key] = id
}

// ReferenceSnapshot is what the order-item pipeline validates FKs against.
type ReferenceSnapshot struct {
	Customers *IdentitySnapshot
	Products  *IdentitySnapshot
}

func NewReferenceSnapshot() *ReferenceSnapshot {
	return &ReferenceSnapshot{
		Customers: NewIdentitySnapshot(),
		Products:  NewIdentitySnapshot(),
	}
}
