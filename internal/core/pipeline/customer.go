package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/identity"
	"github.com/kirillkom/commerce-reconciler/internal/core/normalize"
)

// CustomerResult is everything one customer batch produces: canonical rows
// sorted by id, the facet aliases to persist for later runs, rejected rows
// and the quality report.
type CustomerResult struct {
	Customers []domain.CanonicalCustomer
	Aliases   map[string]string
	Rejected  []domain.RejectedRow
	Report    domain.QualityReport
}

type CustomerPipeline struct {
	catalog *normalize.Catalog
	fields  *FieldMap
	now     func() time.Time
}

func NewCustomerPipeline(catalog *normalize.Catalog) *CustomerPipeline {
	return &CustomerPipeline{
		catalog: catalog,
		fields:  NewFieldMap(customerAliases()),
		now:     time.Now,
	}
}

// TargetFields lists the canonical schema a mapping suggester maps source
// columns onto.
func (p *CustomerPipeline) TargetFields() []string {
	return p.fields.Fields()
}

// Transform normalizes raw rows, resolves identities against the snapshot
// and collapses records of the same customer into one canonical row. Rows
// without a single identity facet are rejected, never dropped silently.
func (p *CustomerPipeline) Transform(sourceFile string, records []domain.RawRecord, snap *domain.IdentitySnapshot, hints map[string]string) *CustomerResult {
	fields := p.fields.WithHints(hints)
	result := &CustomerResult{
		Report: domain.QualityReport{
			EntityType: domain.EntityCustomer,
			InputRows:  len(records),
		},
	}

	var drafts []customerDraft
	var idRecords []identity.Record
	for _, rec := range records {
		if emptyRecord(rec) {
			result.Rejected = append(result.Rejected, domain.RejectedRow{
				Index:  rec.Index,
				Reason: domain.ReasonEmptyRecord,
			})
			continue
		}
		d := p.draft(fields, rec)
		if len(d.facets) == 0 {
			result.Rejected = append(result.Rejected, domain.RejectedRow{
				Index:     rec.Index,
				SourceRef: d.sourceRef,
				Reason:    domain.ReasonMissingIdentity,
				Detail:    "no id, email, phone or postal identity facet",
			})
			continue
		}
		idRecords = append(idRecords, identity.Record{Index: len(drafts), Facets: d.facets})
		drafts = append(drafts, d)
	}

	res := identity.Resolve(idRecords, snap)
	result.Aliases = res.Aliases
	result.Report.IdentityMerges = res.Merges
	result.Report.IdentityConflicts = res.Conflicts

	merged := make(map[string]*customerDraft)
	for i := range drafts {
		id := res.IDs[i]
		if existing, ok := merged[id]; ok {
			mergeCustomerDraft(existing, drafts[i])
			continue
		}
		d := drafts[i]
		merged[id] = &d
	}

	now := p.now().UTC()
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		result.Customers = append(result.Customers, p.build(id, *merged[id], sourceFile, now, &result.Report))
	}
	result.Report.CanonicalRows = len(result.Customers)
	result.Report.RejectedRows = len(result.Rejected)
	return result
}

type customerDraft struct {
	sourceRef string
	name      normalize.NameParts
	email     string
	phone     string
	street    string
	city      string
	state     string
	postal    string
	gender    string
	status    string
	segment   string
	preferred string
	regDate   *time.Time
	birthDate *time.Time

	age            int
	hasAge         bool
	totalOrders    int
	hasTotalOrders bool
	totalSpent     float64
	hasTotalSpent  bool
	loyalty        int
	hasLoyalty     bool

	facets []identity.Facet
}

func (p *CustomerPipeline) draft(fields *FieldMap, rec domain.RawRecord) customerDraft {
	d := customerDraft{
		sourceRef: identity.CanonicalizeCustomerRef(fields.Value(rec, "customer_id").Text()),
		name:      normalize.SplitName(fields.Value(rec, "name")),
		email:     normalize.Clean(fields.Value(rec, "email"), normalize.CaseLower),
		street:    normalize.Clean(fields.Value(rec, "address_street"), normalize.CaseTitle),
		city:      p.catalog.NormalizeCity(fields.Value(rec, "address_city")),
		state:     p.catalog.NormalizeState(fields.Value(rec, "address_state")),
		gender:    p.catalog.NormalizeGender(fields.Value(rec, "gender")),
		status:    p.catalog.NormalizeCustomerStatus(fields.Value(rec, "status")),
		segment:   normalize.CleanDefault(fields.Value(rec, "segment"), normalize.CaseUpper, p.catalog.Unknown),
		preferred: normalize.CleanDefault(fields.Value(rec, "preferred_payment"), normalize.CaseTitle, p.catalog.Unknown),
	}
	if phone, ok := normalize.StandardizePhone(fields.Value(rec, "phone")); ok {
		d.phone = phone
	}
	if postal, ok := normalize.StandardizePostalCode(fields.Value(rec, "postal_code")); ok {
		d.postal = postal
	}
	if t, ok := normalize.ParseDate(fields.Value(rec, "registration_date")); ok {
		d.regDate = &t
	}
	if t, ok := normalize.ParseDate(fields.Value(rec, "birth_date")); ok {
		d.birthDate = &t
	}
	if n, ok := normalize.ParseInt(fields.Value(rec, "age")); ok && n > 0 {
		d.age, d.hasAge = n, true
	}
	if n, ok := normalize.ParseInt(fields.Value(rec, "total_orders")); ok {
		d.totalOrders, d.hasTotalOrders = n, true
	}
	if f, ok := normalize.ParseDecimal(fields.Value(rec, "total_spent")); ok {
		d.totalSpent, d.hasTotalSpent = f, true
	}
	if n, ok := normalize.ParseInt(fields.Value(rec, "loyalty_points")); ok {
		d.loyalty, d.hasLoyalty = n, true
	}

	if strings.Contains(d.email, "@") {
		d.facets = append(d.facets, identity.EmailFacet(d.email))
	}
	if d.sourceRef != "" {
		d.facets = append(d.facets, identity.CustomerSourceFacet(d.sourceRef))
	}
	if !d.name.Empty() {
		full := d.name.Full()
		if d.phone != "" {
			d.facets = append(d.facets, identity.NamePhoneFacet(full, d.phone))
		}
		if d.postal != "" {
			d.facets = append(d.facets, identity.NamePostalFacet(full, d.postal))
		}
	}
	return d
}

// mergeCustomerDraft folds src into dst: a field from a later record wins
// only when it carries a real value, so one sparse row never blanks out a
// richer earlier one.
func mergeCustomerDraft(dst *customerDraft, src customerDraft) {
	if src.sourceRef != "" {
		dst.sourceRef = src.sourceRef
	}
	if !src.name.Empty() {
		dst.name = src.name
	}
	if src.email != "" {
		dst.email = src.email
	}
	if src.phone != "" {
		dst.phone = src.phone
	}
	if src.street != "" {
		dst.street = src.street
	}
	unknown := func(s string) bool { return s == "" || strings.EqualFold(s, "UNKNOWN") }
	if !unknown(src.city) {
		dst.city = src.city
	}
	if !unknown(src.state) {
		dst.state = src.state
	}
	if src.postal != "" {
		dst.postal = src.postal
	}
	if !unknown(src.gender) {
		dst.gender = src.gender
	}
	if !unknown(src.status) {
		dst.status = src.status
	}
	if !unknown(src.segment) {
		dst.segment = src.segment
	}
	if !unknown(src.preferred) {
		dst.preferred = src.preferred
	}
	if src.regDate != nil {
		dst.regDate = src.regDate
	}
	if src.birthDate != nil {
		dst.birthDate = src.birthDate
	}
	if src.hasAge {
		dst.age, dst.hasAge = src.age, true
	}
	if src.hasTotalOrders {
		dst.totalOrders, dst.hasTotalOrders = src.totalOrders, true
	}
	if src.hasTotalSpent {
		dst.totalSpent, dst.hasTotalSpent = src.totalSpent, true
	}
	if src.hasLoyalty {
		dst.loyalty, dst.hasLoyalty = src.loyalty, true
	}
	dst.facets = append(dst.facets, src.facets...)
}

func (p *CustomerPipeline) build(id string, d customerDraft, sourceFile string, now time.Time, report *domain.QualityReport) domain.CanonicalCustomer {
	c := domain.CanonicalCustomer{
		CustomerID:       id,
		FullName:         d.name.Full(),
		FirstName:        d.name.First,
		LastName:         d.name.Last,
		Email:            d.email,
		Phone:            d.phone,
		AddressStreet:    d.street,
		AddressCity:      d.city,
		AddressState:     d.state,
		PostalCode:       d.postal,
		RegistrationDate: d.regDate,
		BirthDate:        d.birthDate,
		Gender:           d.gender,
		Segment:          d.segment,
		Status:           d.status,
		TotalOrders:      d.totalOrders,
		TotalSpent:       d.totalSpent,
		LoyaltyPoints:    d.loyalty,
		PreferredPayment: d.preferred,
		SourceRef:        d.sourceRef,
		SourceFile:       sourceFile,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	switch {
	case d.birthDate != nil:
		c.Age = yearsBetween(*d.birthDate, now)
	case d.hasAge:
		c.Age = d.age
	}

	if c.FullName == "" {
		report.CountNull("full_name")
	}
	if c.Email == "" {
		report.CountNull("email")
	}
	if c.Phone == "" {
		report.CountNull("phone")
	}
	if c.AddressStreet == "" {
		report.CountNull("address_street")
	}
	if c.PostalCode == "" {
		report.CountNull("postal_code")
	}
	if c.RegistrationDate == nil {
		report.CountNull("registration_date")
	}
	if c.BirthDate == nil {
		report.CountNull("birth_date")
	}
	return c
}

func yearsBetween(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
