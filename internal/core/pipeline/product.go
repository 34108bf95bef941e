package pipeline

import (
	"sort"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/identity"
	"github.com/kirillkom/commerce-reconciler/internal/core/normalize"
)

const defaultDescription = "No description available"

type ProductResult struct {
	Products []domain.CanonicalProduct
	Aliases  map[string]string
	Rejected []domain.RejectedRow
	Report   domain.QualityReport
}

type ProductPipeline struct {
	catalog *normalize.Catalog
	fields  *FieldMap
	now     func() time.Time
}

func NewProductPipeline(catalog *normalize.Catalog) *ProductPipeline {
	return &ProductPipeline{
		catalog: catalog,
		fields:  NewFieldMap(productAliases()),
		now:     time.Now,
	}
}

func (p *ProductPipeline) TargetFields() []string {
	return p.fields.Fields()
}

// Transform normalizes product rows and collapses duplicates of the same
// product. Negative prices, costs, weights and stock levels are clamped to
// zero and counted, not rejected; only rows without any identity (no id and
// no name) are rejected.
func (p *ProductPipeline) Transform(sourceFile string, records []domain.RawRecord, snap *domain.IdentitySnapshot, hints map[string]string) *ProductResult {
	fields := p.fields.WithHints(hints)
	result := &ProductResult{
		Report: domain.QualityReport{
			EntityType: domain.EntityProduct,
			InputRows:  len(records),
		},
	}

	var drafts []productDraft
	var idRecords []identity.Record
	for _, rec := range records {
		if emptyRecord(rec) {
			result.Rejected = append(result.Rejected, domain.RejectedRow{
				Index:  rec.Index,
				Reason: domain.ReasonEmptyRecord,
			})
			continue
		}
		d := p.draft(fields, rec, &result.Report)
		if len(d.facets) == 0 {
			result.Rejected = append(result.Rejected, domain.RejectedRow{
				Index:  rec.Index,
				Reason: domain.ReasonMissingIdentity,
				Detail: "no product id or name",
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

	merged := make(map[string]*productDraft)
	for i := range drafts {
		id := res.IDs[i]
		if existing, ok := merged[id]; ok {
			mergeProductDraft(existing, drafts[i])
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
		result.Products = append(result.Products, p.build(id, *merged[id], sourceFile, now, &result.Report))
	}
	result.Report.CanonicalRows = len(result.Products)
	result.Report.RejectedRows = len(result.Rejected)
	return result
}

type productDraft struct {
	sourceRef    string
	numeric      string
	name         string
	description  string
	category     string
	brand        string
	manufacturer string
	color        string
	size         string
	supplier     string

	price      float64
	hasPrice   bool
	cost       float64
	hasCost    bool
	stock      int
	hasStock   bool
	reorder    int
	hasReorder bool

	weight   *float64
	rating   *float64
	dims     *normalize.Dimensions
	isActive *bool
	created  *time.Time

	facets []identity.Facet
}

func (p *ProductPipeline) draft(fields *FieldMap, rec domain.RawRecord, report *domain.QualityReport) productDraft {
	ref := fields.Value(rec, "product_id")
	if ref.IsNull() {
		ref = fields.Value(rec, "source_int_id")
	}
	id, numeric := identity.CanonicalizeProductRef(ref.Text())

	d := productDraft{
		sourceRef:    id,
		numeric:      numeric,
		name:         normalize.Clean(fields.Value(rec, "name"), normalize.CaseTitle),
		description:  normalize.Clean(fields.Value(rec, "description"), normalize.CaseNone),
		category:     normalize.CleanDefault(fields.Value(rec, "category"), normalize.CaseTitle, p.catalog.Unknown),
		brand:        normalize.Clean(fields.Value(rec, "brand"), normalize.CaseTitle),
		manufacturer: normalize.Clean(fields.Value(rec, "manufacturer"), normalize.CaseTitle),
		color:        normalize.CleanDefault(fields.Value(rec, "color"), normalize.CaseTitle, p.catalog.Unknown),
		size:         normalize.CleanDefault(fields.Value(rec, "size"), normalize.CaseUpper, "N/A"),
		supplier:     normalize.Clean(fields.Value(rec, "supplier_id"), normalize.CaseUpper),
	}
	if d.brand == "" {
		d.brand = d.manufacturer
	}
	if d.manufacturer == "" {
		d.manufacturer = d.brand
	}

	if f, ok := normalize.ParseDecimal(fields.Value(rec, "price")); ok {
		d.price, d.hasPrice = clampNonNegative(f, report), true
	}
	if f, ok := normalize.ParseDecimal(fields.Value(rec, "cost")); ok {
		d.cost, d.hasCost = clampNonNegative(f, report), true
	}
	if n, ok := normalize.ParseInt(fields.Value(rec, "stock")); ok {
		if n < 0 {
			n = 0
			report.ClampedValues++
		}
		d.stock, d.hasStock = n, true
	}
	if n, ok := normalize.ParseInt(fields.Value(rec, "reorder_level")); ok {
		if n < 0 {
			n = 0
			report.ClampedValues++
		}
		d.reorder, d.hasReorder = n, true
	}
	if f, ok := normalize.ParseDecimal(fields.Value(rec, "weight")); ok {
		f = clampNonNegative(f, report)
		d.weight = &f
	}
	if f, ok := normalize.ParseDecimal(fields.Value(rec, "rating")); ok {
		switch {
		case f < 0:
			f = 0
			report.ClampedValues++
		case f > 5:
			f = 5
			report.ClampedValues++
		}
		d.rating = &f
	}
	if dims, ok := normalize.ParseDimensions(fields.Value(rec, "dimensions")); ok {
		d.dims = &dims
	}
	if b, ok := normalize.ParseBool(fields.Value(rec, "is_active")); ok {
		d.isActive = &b
	}
	if t, ok := normalize.ParseDate(fields.Value(rec, "created_date")); ok {
		d.created = &t
	}

	if d.sourceRef != "" {
		d.facets = append(d.facets, identity.ProductSourceFacet(d.sourceRef))
		if d.numeric != "" {
			d.facets = append(d.facets, identity.ProductNumericFacet(d.numeric, d.sourceRef))
		}
	}
	if d.name != "" {
		d.facets = append(d.facets, identity.ProductNameFacet(d.name))
	}
	return d
}

func clampNonNegative(f float64, report *domain.QualityReport) float64 {
	if f < 0 {
		report.ClampedValues++
		return 0
	}
	return f
}

func mergeProductDraft(dst *productDraft, src productDraft) {
	if src.sourceRef != "" {
		dst.sourceRef = src.sourceRef
	}
	if src.numeric != "" {
		dst.numeric = src.numeric
	}
	if src.name != "" {
		dst.name = src.name
	}
	if src.description != "" {
		dst.description = src.description
	}
	unknown := func(s string) bool { return s == "" || s == "UNKNOWN" || s == "Unknown" || s == "N/A" }
	if !unknown(src.category) {
		dst.category = src.category
	}
	if src.brand != "" {
		dst.brand = src.brand
	}
	if src.manufacturer != "" {
		dst.manufacturer = src.manufacturer
	}
	if !unknown(src.color) {
		dst.color = src.color
	}
	if !unknown(src.size) {
		dst.size = src.size
	}
	if src.supplier != "" {
		dst.supplier = src.supplier
	}
	if src.hasPrice {
		dst.price, dst.hasPrice = src.price, true
	}
	if src.hasCost {
		dst.cost, dst.hasCost = src.cost, true
	}
	if src.hasStock {
		dst.stock, dst.hasStock = src.stock, true
	}
	if src.hasReorder {
		dst.reorder, dst.hasReorder = src.reorder, true
	}
	if src.weight != nil {
		dst.weight = src.weight
	}
	if src.rating != nil {
		dst.rating = src.rating
	}
	if src.dims != nil {
		dst.dims = src.dims
	}
	if src.isActive != nil {
		dst.isActive = src.isActive
	}
	if src.created != nil {
		dst.created = src.created
	}
	dst.facets = append(dst.facets, src.facets...)
}

func (p *ProductPipeline) build(id string, d productDraft, sourceFile string, now time.Time, report *domain.QualityReport) domain.CanonicalProduct {
	prod := domain.CanonicalProduct{
		ProductID:     id,
		Name:          d.name,
		Description:   d.description,
		Category:      d.category,
		Brand:         d.brand,
		Manufacturer:  d.manufacturer,
		Price:         d.price,
		Cost:          d.cost,
		WeightKG:      d.weight,
		Color:         d.color,
		Size:          d.size,
		StockQuantity: d.stock,
		ReorderLevel:  d.reorder,
		SupplierID:    d.supplier,
		IsActive:      d.isActive,
		Rating:        d.rating,
		CreatedDate:   d.created,
		SourceRef:     d.sourceRef,
		SourceFile:    sourceFile,
		UpdatedAt:     now,
	}
	if prod.Description == "" {
		prod.Description = defaultDescription
	}
	if d.dims != nil {
		l, w, h := d.dims.Length, d.dims.Width, d.dims.Height
		prod.LengthCM, prod.WidthCM, prod.HeightCM = &l, &w, &h
	}

	if prod.Name == "" {
		report.CountNull("name")
	}
	if prod.Brand == "" {
		report.CountNull("brand")
	}
	if !d.hasPrice {
		report.CountNull("price")
	}
	if !d.hasCost {
		report.CountNull("cost")
	}
	if prod.WeightKG == nil {
		report.CountNull("weight_kg")
	}
	if prod.CreatedDate == nil {
		report.CountNull("created_date")
	}
	return prod
}
