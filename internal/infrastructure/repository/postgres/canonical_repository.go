package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/core/pipeline"
)

const customerColumns = `customer_id, full_name, first_name, last_name, email, phone, address_street, address_city, address_state, postal_code, registration_date, birth_date, age, gender, segment, status, total_orders, total_spent, loyalty_points, preferred_payment, source_ref, source_file, created_at, updated_at`

const productColumns = `product_id, name, description, category, brand, manufacturer, price, cost, weight_kg, length_cm, width_cm, height_cm, color, size, stock_quantity, reorder_level, supplier_id, is_active, rating, created_date, source_ref, source_file, updated_at`

const orderItemColumns = `order_item_id, order_id, customer_id, product_id, quantity, unit_price, line_total, line_discount, line_tax, line_shipping, amount_paid, payment_status, delivery_status, notes, order_date, customer_orphan, product_orphan, source_file, updated_at`

const orderColumns = `order_id, customer_id, order_date, status, payment_status, shipping_total, tax_total, discount_total, gross_total, net_total, item_count, customer_orphan, updated_at`

type CanonicalRepository struct {
	db *sql.DB
}

func NewCanonicalRepository(db *sql.DB) *CanonicalRepository {
	return &CanonicalRepository{db: db}
}

// ApplyBatch commits everything one run produced in a single transaction:
// entity upserts, alias bindings, the derived-order refresh, the report and
// the registry flip to processed. The flip is guarded by the claiming batch
// id; zero rows there means the claim was lost and the whole batch rolls
// back.
func (r *CanonicalRepository) ApplyBatch(ctx context.Context, batch *domain.Batch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapError(domain.ErrCommitFailed, "apply batch", fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.applyBatchTx(ctx, tx, batch); err != nil {
		return domain.WrapError(domain.ErrCommitFailed, "apply batch", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.WrapError(domain.ErrCommitFailed, "apply batch", fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func (r *CanonicalRepository) applyBatchTx(ctx context.Context, tx *sql.Tx, batch *domain.Batch) error {
	now := time.Now().UTC()

	for i := range batch.Customers {
		if err := upsertCustomer(ctx, tx, &batch.Customers[i]); err != nil {
			return fmt.Errorf("upsert customer %s: %w", batch.Customers[i].CustomerID, err)
		}
	}
	if err := upsertAliases(ctx, tx, "customer_aliases", "customer_id", batch.CustomerAliases); err != nil {
		return fmt.Errorf("upsert customer aliases: %w", err)
	}

	for i := range batch.Products {
		if err := upsertProduct(ctx, tx, &batch.Products[i]); err != nil {
			return fmt.Errorf("upsert product %s: %w", batch.Products[i].ProductID, err)
		}
	}
	if err := upsertAliases(ctx, tx, "product_aliases", "product_id", batch.ProductAliases); err != nil {
		return fmt.Errorf("upsert product aliases: %w", err)
	}

	for i := range batch.OrderItems {
		if err := upsertOrderItem(ctx, tx, &batch.OrderItems[i]); err != nil {
			return fmt.Errorf("upsert order item %s: %w", batch.OrderItems[i].OrderItemID, err)
		}
	}
	if err := refreshOrders(ctx, tx, batch.OrderItems, now); err != nil {
		return fmt.Errorf("refresh orders: %w", err)
	}

	if err := upsertReport(ctx, tx, &batch.Report); err != nil {
		return fmt.Errorf("upsert batch report: %w", err)
	}
	if err := markProcessed(ctx, tx, batch.FileID, batch.BatchID, now); err != nil {
		return err
	}
	return nil
}

// Upserts prefer the incoming value except where it is one of the stand-ins
// the pipelines emit for data a source never had: empty strings, the UNKNOWN
// bucket, zero for stated totals, NULL for optional columns. Those keep
// whatever an earlier file contributed.
func upsertCustomer(ctx context.Context, tx *sql.Tx, c *domain.CanonicalCustomer) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO customers (`+customerColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
ON CONFLICT (customer_id) DO UPDATE SET
	full_name = COALESCE(NULLIF(EXCLUDED.full_name, ''), customers.full_name),
	first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), customers.first_name),
	last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), customers.last_name),
	email = COALESCE(NULLIF(EXCLUDED.email, ''), customers.email),
	phone = COALESCE(NULLIF(EXCLUDED.phone, ''), customers.phone),
	address_street = COALESCE(NULLIF(EXCLUDED.address_street, ''), customers.address_street),
	address_city = COALESCE(NULLIF(NULLIF(EXCLUDED.address_city, ''), 'UNKNOWN'), customers.address_city),
	address_state = COALESCE(NULLIF(NULLIF(EXCLUDED.address_state, ''), 'UNKNOWN'), customers.address_state),
	postal_code = COALESCE(NULLIF(EXCLUDED.postal_code, ''), customers.postal_code),
	registration_date = COALESCE(EXCLUDED.registration_date, customers.registration_date),
	birth_date = COALESCE(EXCLUDED.birth_date, customers.birth_date),
	age = COALESCE(NULLIF(EXCLUDED.age, 0), customers.age),
	gender = COALESCE(NULLIF(NULLIF(EXCLUDED.gender, ''), 'UNKNOWN'), customers.gender),
	segment = COALESCE(NULLIF(NULLIF(EXCLUDED.segment, ''), 'UNKNOWN'), customers.segment),
	status = COALESCE(NULLIF(NULLIF(EXCLUDED.status, ''), 'UNKNOWN'), customers.status),
	total_orders = COALESCE(NULLIF(EXCLUDED.total_orders, 0), customers.total_orders),
	total_spent = COALESCE(NULLIF(EXCLUDED.total_spent, 0), customers.total_spent),
	loyalty_points = COALESCE(NULLIF(EXCLUDED.loyalty_points, 0), customers.loyalty_points),
	preferred_payment = COALESCE(NULLIF(NULLIF(EXCLUDED.preferred_payment, ''), 'UNKNOWN'), customers.preferred_payment),
	source_ref = COALESCE(NULLIF(EXCLUDED.source_ref, ''), customers.source_ref),
	source_file = EXCLUDED.source_file,
	updated_at = EXCLUDED.updated_at
`,
		c.CustomerID, c.FullName, c.FirstName, c.LastName, c.Email, c.Phone,
		c.AddressStreet, c.AddressCity, c.AddressState, c.PostalCode,
		c.RegistrationDate, c.BirthDate, c.Age, c.Gender, c.Segment, c.Status,
		c.TotalOrders, c.TotalSpent, c.LoyaltyPoints, c.PreferredPayment,
		c.SourceRef, c.SourceFile, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func upsertProduct(ctx context.Context, tx *sql.Tx, p *domain.CanonicalProduct) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO products (`+productColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
ON CONFLICT (product_id) DO UPDATE SET
	name = COALESCE(NULLIF(EXCLUDED.name, ''), products.name),
	description = CASE WHEN EXCLUDED.description IN ('', 'No description available') THEN products.description ELSE EXCLUDED.description END,
	category = CASE WHEN EXCLUDED.category IN ('', 'UNKNOWN', 'Unknown') THEN products.category ELSE EXCLUDED.category END,
	brand = COALESCE(NULLIF(EXCLUDED.brand, ''), products.brand),
	manufacturer = COALESCE(NULLIF(EXCLUDED.manufacturer, ''), products.manufacturer),
	price = COALESCE(NULLIF(EXCLUDED.price, 0), products.price),
	cost = COALESCE(NULLIF(EXCLUDED.cost, 0), products.cost),
	weight_kg = COALESCE(EXCLUDED.weight_kg, products.weight_kg),
	length_cm = COALESCE(EXCLUDED.length_cm, products.length_cm),
	width_cm = COALESCE(EXCLUDED.width_cm, products.width_cm),
	height_cm = COALESCE(EXCLUDED.height_cm, products.height_cm),
	color = CASE WHEN EXCLUDED.color IN ('', 'UNKNOWN', 'Unknown') THEN products.color ELSE EXCLUDED.color END,
	size = CASE WHEN EXCLUDED.size IN ('', 'N/A') THEN products.size ELSE EXCLUDED.size END,
	stock_quantity = EXCLUDED.stock_quantity,
	reorder_level = EXCLUDED.reorder_level,
	supplier_id = COALESCE(NULLIF(EXCLUDED.supplier_id, ''), products.supplier_id),
	is_active = COALESCE(EXCLUDED.is_active, products.is_active),
	rating = COALESCE(EXCLUDED.rating, products.rating),
	created_date = COALESCE(EXCLUDED.created_date, products.created_date),
	source_ref = COALESCE(NULLIF(EXCLUDED.source_ref, ''), products.source_ref),
	source_file = EXCLUDED.source_file,
	updated_at = EXCLUDED.updated_at
`,
		p.ProductID, p.Name, p.Description, p.Category, p.Brand, p.Manufacturer,
		p.Price, p.Cost, p.WeightKG, p.LengthCM, p.WidthCM, p.HeightCM,
		p.Color, p.Size, p.StockQuantity, p.ReorderLevel, p.SupplierID,
		p.IsActive, p.Rating, p.CreatedDate, p.SourceRef, p.SourceFile, p.UpdatedAt,
	)
	return err
}

// Order items are whole-row recomputations of their source line, so the
// upsert overwrites every mutable column.
func upsertOrderItem(ctx context.Context, tx *sql.Tx, item *domain.CanonicalOrderItem) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO order_items (`+orderItemColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
ON CONFLICT (order_item_id) DO UPDATE SET
	order_id = EXCLUDED.order_id,
	customer_id = EXCLUDED.customer_id,
	product_id = EXCLUDED.product_id,
	quantity = EXCLUDED.quantity,
	unit_price = EXCLUDED.unit_price,
	line_total = EXCLUDED.line_total,
	line_discount = EXCLUDED.line_discount,
	line_tax = EXCLUDED.line_tax,
	line_shipping = EXCLUDED.line_shipping,
	amount_paid = EXCLUDED.amount_paid,
	payment_status = EXCLUDED.payment_status,
	delivery_status = EXCLUDED.delivery_status,
	notes = EXCLUDED.notes,
	order_date = EXCLUDED.order_date,
	customer_orphan = EXCLUDED.customer_orphan,
	product_orphan = EXCLUDED.product_orphan,
	source_file = EXCLUDED.source_file,
	updated_at = EXCLUDED.updated_at
`,
		item.OrderItemID, item.OrderID, item.CustomerID, item.ProductID,
		item.Quantity, item.UnitPrice, item.LineTotal, item.LineDiscount,
		item.LineTax, item.LineShipping, item.AmountPaid, item.PaymentStatus,
		item.DeliveryStatus, item.Notes, item.OrderDate, item.CustomerOrphan,
		item.ProductOrphan, item.SourceFile, item.UpdatedAt,
	)
	return err
}

// Alias bindings never move once written; identity resolution adopts the
// stored binding, so a conflicting insert can only be a stale duplicate.
func upsertAliases(ctx context.Context, tx *sql.Tx, table, idColumn string, aliases map[string]string) error {
	keys := make([]string, 0, len(aliases))
	for key := range aliases {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	query := fmt.Sprintf(`INSERT INTO %s (alias_key, %s) VALUES ($1, $2) ON CONFLICT (alias_key) DO NOTHING`, table, idColumn)
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, query, key, aliases[key]); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// refreshOrders recomputes the roll-up row of every order the batch touched
// from all of its stored items, not just the ones in this batch.
func refreshOrders(ctx context.Context, tx *sql.Tx, items []domain.CanonicalOrderItem, now time.Time) error {
	touched := make(map[string]struct{})
	for _, item := range items {
		touched[item.OrderID] = struct{}{}
	}
	if len(touched) == 0 {
		return nil
	}
	orderIDs := make([]string, 0, len(touched))
	for id := range touched {
		orderIDs = append(orderIDs, id)
	}
	sort.Strings(orderIDs)

	stored := make([]domain.CanonicalOrderItem, 0, len(items))
	for _, orderID := range orderIDs {
		rows, err := tx.QueryContext(ctx, `
SELECT `+orderItemColumns+`
FROM order_items
WHERE order_id = $1
ORDER BY order_item_id
`, orderID)
		if err != nil {
			return fmt.Errorf("load items for order %s: %w", orderID, err)
		}
		for rows.Next() {
			item, err := scanOrderItem(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("scan item for order %s: %w", orderID, err)
			}
			stored = append(stored, item)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate items for order %s: %w", orderID, err)
		}
		rows.Close()
	}

	for _, order := range pipeline.AssembleOrders(stored, now) {
		if err := upsertOrder(ctx, tx, &order); err != nil {
			return fmt.Errorf("upsert order %s: %w", order.OrderID, err)
		}
	}
	return nil
}

func upsertOrder(ctx context.Context, tx *sql.Tx, o *domain.CanonicalOrder) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO orders (`+orderColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (order_id) DO UPDATE SET
	customer_id = EXCLUDED.customer_id,
	order_date = EXCLUDED.order_date,
	status = EXCLUDED.status,
	payment_status = EXCLUDED.payment_status,
	shipping_total = EXCLUDED.shipping_total,
	tax_total = EXCLUDED.tax_total,
	discount_total = EXCLUDED.discount_total,
	gross_total = EXCLUDED.gross_total,
	net_total = EXCLUDED.net_total,
	item_count = EXCLUDED.item_count,
	customer_orphan = EXCLUDED.customer_orphan,
	updated_at = EXCLUDED.updated_at
`,
		o.OrderID, o.CustomerID, o.OrderDate, o.Status, o.PaymentStatus,
		o.ShippingTotal, o.TaxTotal, o.DiscountTotal, o.GrossTotal, o.NetTotal,
		o.ItemCount, o.CustomerOrphan, o.UpdatedAt,
	)
	return err
}

// One report row per file; reprocessing replaces it.
func upsertReport(ctx context.Context, tx *sql.Tx, report *domain.BatchReport) error {
	qualityJSON, err := json.Marshal(report.Quality)
	if err != nil {
		return fmt.Errorf("marshal quality: %w", err)
	}
	rejected := report.Rejected
	if rejected == nil {
		rejected = []domain.RejectedRow{}
	}
	rejectedJSON, err := json.Marshal(rejected)
	if err != nil {
		return fmt.Errorf("marshal rejected rows: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO batch_reports (file_id, batch_id, entity_type, quality, rejected, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (file_id) DO UPDATE SET
	batch_id = EXCLUDED.batch_id,
	entity_type = EXCLUDED.entity_type,
	quality = EXCLUDED.quality,
	rejected = EXCLUDED.rejected,
	created_at = EXCLUDED.created_at
`, report.FileID, report.BatchID, string(report.EntityType), qualityJSON, rejectedJSON, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert batch report: %w", err)
	}
	return nil
}

func markProcessed(ctx context.Context, tx *sql.Tx, fileID, batchID string, now time.Time) error {
	result, err := tx.ExecContext(ctx, `
UPDATE source_file_registry
SET status = $3, processed_at = $4, updated_at = $4, error_message = ''
WHERE file_id = $1 AND batch_id = $2 AND status = $5
`, fileID, batchID, string(domain.StatusProcessed), now, string(domain.StatusProcessing))
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark processed rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("claim on file %s lost by batch %s", fileID, batchID)
	}
	return nil
}

func (r *CanonicalRepository) CustomerSnapshot(ctx context.Context) (*domain.IdentitySnapshot, error) {
	return r.loadSnapshot(ctx, `SELECT customer_id FROM customers`, `SELECT alias_key, customer_id FROM customer_aliases`)
}

func (r *CanonicalRepository) ProductSnapshot(ctx context.Context) (*domain.IdentitySnapshot, error) {
	return r.loadSnapshot(ctx, `SELECT product_id FROM products`, `SELECT alias_key, product_id FROM product_aliases`)
}

func (r *CanonicalRepository) loadSnapshot(ctx context.Context, idQuery, aliasQuery string) (*domain.IdentitySnapshot, error) {
	snap := domain.NewIdentitySnapshot()

	rows, err := r.db.QueryContext(ctx, idQuery)
	if err != nil {
		return nil, fmt.Errorf("load canonical ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan canonical id: %w", err)
		}
		snap.AddID(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate canonical ids: %w", err)
	}

	aliasRows, err := r.db.QueryContext(ctx, aliasQuery)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	defer aliasRows.Close()
	for aliasRows.Next() {
		var key, id string
		if err := aliasRows.Scan(&key, &id); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		snap.BindFacet(key, id)
	}
	if err := aliasRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aliases: %w", err)
	}
	return snap, nil
}

func (r *CanonicalRepository) ListCustomers(ctx context.Context, limit int) ([]domain.CanonicalCustomer, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+customerColumns+`
FROM customers
ORDER BY customer_id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CanonicalCustomer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return out, nil
}

func (r *CanonicalRepository) ListProducts(ctx context.Context, limit int) ([]domain.CanonicalProduct, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+productColumns+`
FROM products
ORDER BY product_id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CanonicalProduct, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func (r *CanonicalRepository) ListOrders(ctx context.Context, limit int) ([]domain.CanonicalOrder, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+orderColumns+`
FROM orders
ORDER BY order_id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CanonicalOrder, 0)
	for rows.Next() {
		var o domain.CanonicalOrder
		err := rows.Scan(
			&o.OrderID, &o.CustomerID, &o.OrderDate, &o.Status, &o.PaymentStatus,
			&o.ShippingTotal, &o.TaxTotal, &o.DiscountTotal, &o.GrossTotal, &o.NetTotal,
			&o.ItemCount, &o.CustomerOrphan, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}

func (r *CanonicalRepository) ReportByFileID(ctx context.Context, fileID string) (*domain.BatchReport, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT file_id, batch_id, entity_type, quality, rejected, created_at
FROM batch_reports
WHERE file_id = $1
`, fileID)

	var report domain.BatchReport
	var entity string
	var qualityRaw, rejectedRaw []byte
	err := row.Scan(&report.FileID, &report.BatchID, &entity, &qualityRaw, &rejectedRaw, &report.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrFileNotFound, "get batch report", fmt.Errorf("no report for file %s", fileID))
		}
		return nil, fmt.Errorf("scan batch report: %w", err)
	}

	if err := json.Unmarshal(qualityRaw, &report.Quality); err != nil {
		return nil, fmt.Errorf("unmarshal quality: %w", err)
	}
	if err := json.Unmarshal(rejectedRaw, &report.Rejected); err != nil {
		return nil, fmt.Errorf("unmarshal rejected rows: %w", err)
	}
	report.EntityType = domain.EntityType(entity)
	return &report, nil
}

func scanCustomer(row rowScanner) (domain.CanonicalCustomer, error) {
	var c domain.CanonicalCustomer
	err := row.Scan(
		&c.CustomerID, &c.FullName, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.AddressStreet, &c.AddressCity, &c.AddressState, &c.PostalCode,
		&c.RegistrationDate, &c.BirthDate, &c.Age, &c.Gender, &c.Segment, &c.Status,
		&c.TotalOrders, &c.TotalSpent, &c.LoyaltyPoints, &c.PreferredPayment,
		&c.SourceRef, &c.SourceFile, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.CanonicalCustomer{}, err
	}
	return c, nil
}

func scanProduct(row rowScanner) (domain.CanonicalProduct, error) {
	var p domain.CanonicalProduct
	err := row.Scan(
		&p.ProductID, &p.Name, &p.Description, &p.Category, &p.Brand, &p.Manufacturer,
		&p.Price, &p.Cost, &p.WeightKG, &p.LengthCM, &p.WidthCM, &p.HeightCM,
		&p.Color, &p.Size, &p.StockQuantity, &p.ReorderLevel, &p.SupplierID,
		&p.IsActive, &p.Rating, &p.CreatedDate, &p.SourceRef, &p.SourceFile, &p.UpdatedAt,
	)
	if err != nil {
		return domain.CanonicalProduct{}, err
	}
	return p, nil
}

func scanOrderItem(row rowScanner) (domain.CanonicalOrderItem, error) {
	var item domain.CanonicalOrderItem
	err := row.Scan(
		&item.OrderItemID, &item.OrderID, &item.CustomerID, &item.ProductID,
		&item.Quantity, &item.UnitPrice, &item.LineTotal, &item.LineDiscount,
		&item.LineTax, &item.LineShipping, &item.AmountPaid, &item.PaymentStatus,
		&item.DeliveryStatus, &item.Notes, &item.OrderDate, &item.CustomerOrphan,
		&item.ProductOrphan, &item.SourceFile, &item.UpdatedAt,
	)
	if err != nil {
		return domain.CanonicalOrderItem{}, err
	}
	return item, nil
}
