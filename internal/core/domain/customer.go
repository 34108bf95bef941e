package domain

import "time"

// CanonicalCustomer is the reconciled customer row. CustomerID is derived
// deterministically from identity facets, never taken verbatim from a source
// unless the source id is the best facet available.
type CanonicalCustomer struct {
	CustomerID       string     `json:"customer_id"`
	FullName         string     `json:"full_name"`
	FirstName        string     `json:"first_name,omitempty"`
	LastName         string     `json:"last_name,omitempty"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	AddressStreet    string     `json:"address_street,omitempty"`
	AddressCity      string     `json:"address_city,omitempty"`
	AddressState     string     `json:"address_state,omitempty"`
	PostalCode       string     `json:"postal_code,omitempty"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
	Age              int        `json:"age,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	Segment          string     `json:"segment,omitempty"`
	Status           string     `json:"status,omitempty"`
	TotalOrders      int        `json:"total_orders"`
	TotalSpent       float64    `json:"total_spent"`
	LoyaltyPoints    int        `json:"loyalty_points"`
	PreferredPayment string     `json:"preferred_payment,omitempty"`
	SourceRef        string     `json:"source_ref,omitempty"`
	SourceFile       string     `json:"source_file"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
