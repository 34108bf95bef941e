package normalize

import "github.com/kirillkom/commerce-reconciler/internal/core/domain"

// Catalog holds the categorical lookup tables. Lookups are case and
// whitespace insensitive; raw values outside a table land in the Unknown
// bucket instead of being rejected.
type Catalog struct {
	Unknown        string
	Gender         map[string]string
	CustomerStatus map[string]string
	PaymentStatus  map[string]string
	DeliveryStatus map[string]string
	States         map[string]string
	Cities         map[string]string
}

// Overlay is the externally supplied portion of a catalog; non-empty entries
// win over the built-in defaults.
type Overlay struct {
	Unknown        string            `yaml:"unknown"`
	Gender         map[string]string `yaml:"gender"`
	CustomerStatus map[string]string `yaml:"customer_status"`
	PaymentStatus  map[string]string `yaml:"payment_status"`
	DeliveryStatus map[string]string `yaml:"delivery_status"`
	States         map[string]string `yaml:"states"`
	Cities         map[string]string `yaml:"cities"`
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		Unknown: "UNKNOWN",
		Gender: map[string]string{
			"M": "MALE", "F": "FEMALE", "MALE": "MALE", "FEMALE": "FEMALE",
			"OTHER": "OTHER",
		},
		CustomerStatus: map[string]string{
			"ACTIVE": "ACTIVE", "INACTIVE": "INACTIVE",
			"PENDING": "PENDING", "SUSPENDED": "SUSPENDED",
		},
		PaymentStatus: map[string]string{
			"COMPLETED": "COMPLETED", "PENDING": "PENDING", "FAILED": "FAILED",
		},
		DeliveryStatus: map[string]string{
			"DELIVERED": "DELIVERED", "PENDING": "PENDING",
			"IN_TRANSIT": "IN_TRANSIT", "PROCESSING": "PROCESSING",
			"SHIPPED": "SHIPPED", "CANCELLED": "CANCELLED", "RETURNED": "RETURNED",
		},
		States: map[string]string{
			"CALIFORNIA": "CA", "NEW YORK": "NY", "ILLINOIS": "IL",
			"TEXAS": "TX", "PENNSYLVANIA": "PA", "ARIZONA": "AZ",
			"CA": "CA", "NY": "NY", "IL": "IL", "TX": "TX", "PA": "PA", "AZ": "AZ",
		},
		Cities: map[string]string{
			"LA": "Los Angeles", "LOSANGELES": "Los Angeles", "LOS ANGELES": "Los Angeles",
			"NYC": "New York", "NEW YORK CITY": "New York", "NEW_YORK": "New York", "NEW YORK": "New York",
			"PHILA": "Philadelphia", "PHILADELPHIA": "Philadelphia",
			"CHICAGO": "Chicago", "CHGO": "Chicago",
			"PHOENIX": "Phoenix", "HOUSTON": "Houston",
		},
	}
}

// Merge applies an overlay on top of the catalog, key by key.
func (c *Catalog) Merge(o Overlay) {
	if o.Unknown != "" {
		c.Unknown = o.Unknown
	}
	mergeTable(c.Gender, o.Gender)
	mergeTable(c.CustomerStatus, o.CustomerStatus)
	mergeTable(c.PaymentStatus, o.PaymentStatus)
	mergeTable(c.DeliveryStatus, o.DeliveryStatus)
	mergeTable(c.States, o.States)
	mergeTable(c.Cities, o.Cities)
}

func mergeTable(dst, src map[string]string) {
	for k, v := range src {
		dst[CleanString(k, CaseUpper)] = v
	}
}

func (c *Catalog) lookup(table map[string]string, v domain.Value) string {
	key := Clean(v, CaseUpper)
	if key == "" {
		return c.Unknown
	}
	if mapped, ok := table[key]; ok {
		return mapped
	}
	return c.Unknown
}

func (c *Catalog) NormalizeGender(v domain.Value) string {
	return c.lookup(c.Gender, v)
}

func (c *Catalog) NormalizeCustomerStatus(v domain.Value) string {
	return c.lookup(c.CustomerStatus, v)
}

func (c *Catalog) NormalizePaymentStatus(v domain.Value) string {
	return c.lookup(c.PaymentStatus, v)
}

func (c *Catalog) NormalizeDeliveryStatus(v domain.Value) string {
	return c.lookup(c.DeliveryStatus, v)
}

// NormalizeState keeps an unmapped non-empty value as-is; most of those are
// already abbreviations.
func (c *Catalog) NormalizeState(v domain.Value) string {
	key := Clean(v, CaseUpper)
	if key == "" {
		return c.Unknown
	}
	if mapped, ok := c.States[key]; ok {
		return mapped
	}
	return key
}

// NormalizeCity title-cases unmapped city names rather than dropping them.
func (c *Catalog) NormalizeCity(v domain.Value) string {
	key := Clean(v, CaseUpper)
	if key == "" {
		return c.Unknown
	}
	if mapped, ok := c.Cities[key]; ok {
		return mapped
	}
	return CleanString(key, CaseTitle)
}
