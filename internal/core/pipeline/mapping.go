package pipeline

import (
	"sort"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/normalize"
)

// FieldMap resolves a canonical field to the first source column holding a
// usable value, trying aliases in order. Suggested mappings extend the alias
// lists; they never override the built-in ones.
type FieldMap struct {
	aliases map[string][]string
}

func NewFieldMap(aliases map[string][]string) *FieldMap {
	copied := make(map[string][]string, len(aliases))
	for field, cols := range aliases {
		copied[field] = append([]string(nil), cols...)
	}
	return &FieldMap{aliases: copied}
}

// WithHints returns a FieldMap extended by suggester output (source column
// -> canonical field). Unknown target fields are ignored; duplicate columns
// are not re-added.
func (m *FieldMap) WithHints(hints map[string]string) *FieldMap {
	if len(hints) == 0 {
		return m
	}
	out := NewFieldMap(m.aliases)
	// deterministic application order
	columns := make([]string, 0, len(hints))
	for col := range hints {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	for _, col := range columns {
		field := hints[col]
		existing, ok := out.aliases[field]
		if !ok {
			continue
		}
		normalized := normalize.CleanString(col, normalize.CaseLower)
		if !containsColumn(existing, normalized) {
			out.aliases[field] = append(existing, normalized)
		}
	}
	return out
}

func containsColumn(cols []string, col string) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}

// Value returns the first non-missing value among the field's alias columns.
func (m *FieldMap) Value(rec domain.RawRecord, field string) domain.Value {
	for _, col := range m.aliases[field] {
		if v, ok := rec.Field(col); ok && !normalize.IsMissing(v) {
			return v
		}
	}
	return domain.NullValue()
}

// Fields lists the canonical fields this map can fill, sorted; it is what a
// mapping suggester gets as the target schema.
func (m *FieldMap) Fields() []string {
	fields := make([]string, 0, len(m.aliases))
	for f := range m.aliases {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func customerAliases() map[string][]string {
	return map[string][]string{
		"customer_id":       {"cust_id", "customer_id", "customerid", "client_id", "id", "user_id"},
		"name":              {"customer_name", "full_name", "name"},
		"email":             {"email", "e_mail", "email_address", "user_email"},
		"phone":             {"phone_number", "mobile", "phone", "contact_number"},
		"address_street":    {"address", "street_address", "address1"},
		"address_city":      {"city", "town"},
		"address_state":     {"state", "province"},
		"postal_code":       {"postal_code", "zip_code", "zip", "postcode"},
		"registration_date": {"registration_date", "reg_date", "created_at"},
		"birth_date":        {"birth_date", "dob"},
		"age":               {"age"},
		"gender":            {"gender", "sex"},
		"status":            {"customer_status", "account_status", "status"},
		"segment":           {"segment", "customer_segment", "tier"},
		"total_spent":       {"total_spent", "total_expenditure"},
		"total_orders":      {"total_orders", "order_count"},
		"loyalty_points":    {"loyalty_points", "points"},
		"preferred_payment": {"preferred_payment", "payment_method"},
	}
}

func productAliases() map[string][]string {
	return map[string][]string{
		"product_id":    {"product_id", "productid", "item_code", "product_code"},
		"source_int_id": {"item_id", "id"},
		"name":          {"product_name", "item_name", "name", "title", "prd_name"},
		"description":   {"description", "desc", "details", "product_description"},
		"category":      {"category", "product_category", "type", "genre", "producttype"},
		"brand":         {"brand"},
		"manufacturer":  {"manufacturer"},
		"price":         {"price", "unit_price", "sale_price", "list_price", "prd_price"},
		"cost":          {"cost", "unit_cost", "purchase_price"},
		"weight":        {"weight"},
		"rating":        {"rating", "customer_rating"},
		"dimensions":    {"dimensions"},
		"color":         {"color"},
		"size":          {"size"},
		"stock":         {"stock_quantity", "stock_level", "qty_on_hand"},
		"reorder_level": {"reorder_level"},
		"supplier_id":   {"supplier_id"},
		"is_active":     {"is_active", "active"},
		"created_date":  {"created_date", "date_added"},
	}
}

func reconciliationAliases() map[string][]string {
	return map[string][]string{
		"order_ref":       {"transaction_ref", "order_id"},
		"customer_ref":    {"client_reference", "customer_id"},
		"product_ref":     {"item_reference", "product_id"},
		"order_date":      {"transaction_date", "order_date"},
		"quantity":        {"quantity_ordered", "quantity"},
		"unit_price":      {"unit_cost", "unit_price"},
		"provided_total":  {"total_value"},
		"discount":        {"discount_applied"},
		"shipping_fee":    {"shipping_fee"},
		"tax":             {"tax_amount"},
		"amount_paid":     {"amount_paid"},
		"payment_status":  {"payment_status"},
		"delivery_status": {"delivery_status"},
		"notes":           {"notes_comments"},
	}
}

func unstructuredAliases() map[string][]string {
	return map[string][]string{
		"order_ref":       {"order_id", "ord_id"},
		"customer_ref":    {"cust_id", "customer_id"},
		"product_ref":     {"product_id", "item_id", "prod_id"},
		"order_line_ref":  {"item_identifier", "line_id"},
		"order_date":      {"item_date", "order_date", "date"},
		"quantity":        {"quantity", "qty"},
		"unit_price":      {"unit_price", "price"},
		"provided_total":  {"total", "line_total"},
		"discount":        {"discount"},
		"shipping_fee":    {"shipping_fee"},
		"tax":             {"tax"},
		"amount_paid":     {"amount_paid"},
		"payment_status":  {"payment_status"},
		"delivery_status": {"delivery_status", "status"},
		"notes":           {"notes"},
	}
}
