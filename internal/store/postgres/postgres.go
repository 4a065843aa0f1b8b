package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"bakeshop/backend/internal/domain"
	"bakeshop/backend/internal/store"
	"bakeshop/backend/internal/xid"
)

const connectProbeTimeout = 6 * time.Second

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(30)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	probeCtx, cancel := context.WithTimeout(ctx, connectProbeTimeout)
	defer cancel()
	if err := db.PingContext(probeCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, price, stock, unit, qty_per_box, min_stock, active, created_at
		FROM products
		WHERE ($1 = false OR active = true)
		ORDER BY category, name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Unit, &p.QtyPerBox, &p.MinStock, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Category == "" || product.Price < 1 {
		return nil, store.ErrInvalidOrder
	}
	if product.Unit == domain.UnitBox && product.QtyPerBox < 1 {
		return nil, store.ErrInvalidOrder
	}

	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.Active = true

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, price, stock, unit, qty_per_box, min_stock, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
	`, product.ID, product.Name, product.Category, product.Price, product.Stock, product.Unit, product.QtyPerBox, product.MinStock, product.Active, product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidOrder
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, price, stock, unit, qty_per_box, min_stock, active, created_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Unit, &p.QtyPerBox, &p.MinStock, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, price, stock, unit, qty_per_box, min_stock, active, created_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Unit, &p.QtyPerBox, &p.MinStock, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Category == "" || product.Price < 1 {
		return nil, store.ErrInvalidOrder
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, price = $4, min_stock = $5, active = $6, updated_at = now()
		WHERE id = $1
	`, product.ID, product.Name, product.Category, product.Price, product.MinStock, product.Active)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetProductByID(ctx, product.ID)
}

func (s *Store) ListLowStockProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, price, stock, unit, qty_per_box, min_stock, active, created_at
		FROM products
		WHERE active = true AND stock <= min_stock
		ORDER BY stock ASC, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Unit, &p.QtyPerBox, &p.MinStock, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) AdjustStock(ctx context.Context, productID string, delta int) (int, error) {
	var stock int
	err := s.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = GREATEST(0, stock + $2), updated_at = now()
		WHERE id = $1
		RETURNING stock
	`, productID, delta).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrNotFound
		}
		return 0, err
	}
	return stock, nil
}

func (s *Store) AddBatch(ctx context.Context, batch domain.StockBatch) (*domain.StockBatch, error) {
	if batch.ProductID == "" || batch.Quantity < 1 {
		return nil, store.ErrInvalidOrder
	}
	if batch.ID == "" {
		batch.ID = xid.New("batch")
	}
	if batch.ReceivedAt.IsZero() {
		batch.ReceivedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_batches (id, product_id, quantity, expiry_date, received_at)
		VALUES ($1,$2,$3,$4,$5)
	`, batch.ID, batch.ProductID, batch.Quantity, nullDate(batch.ExpiryDate), batch.ReceivedAt)
	if err != nil {
		return nil, err
	}

	created := batch
	return &created, nil
}

func (s *Store) ListBatches(ctx context.Context, productID string) ([]domain.StockBatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, expiry_date, received_at
		FROM stock_batches
		WHERE ($1 = '' OR product_id = $1)
		ORDER BY received_at ASC, seq ASC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBatches(rows)
}

// ConsumeBatchesFIFO drains up to qty units from the product's batches,
// oldest receipt first. A shortfall is reported, never returned as an
// error; the batch ledger is advisory at checkout time.
func (s *Store) ConsumeBatchesFIFO(ctx context.Context, productID string, qty int) (store.FIFOResult, error) {
	result := store.FIFOResult{ProductID: productID, Requested: qty}
	if productID == "" || qty < 1 {
		return result, store.ErrInvalidOrder
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return result, err
	}
	defer func() { _ = pgTx.Rollback() }()

	result, err = consumeBatchesFIFOTx(ctx, pgTx, productID, qty)
	if err != nil {
		return result, err
	}

	if err := pgTx.Commit(); err != nil {
		return result, err
	}
	return result, nil
}

func consumeBatchesFIFOTx(ctx context.Context, pgTx *sql.Tx, productID string, qty int) (store.FIFOResult, error) {
	result := store.FIFOResult{ProductID: productID, Requested: qty}

	rows, err := pgTx.QueryContext(ctx, `
		SELECT id, quantity
		FROM stock_batches
		WHERE product_id = $1 AND quantity > 0
		ORDER BY received_at ASC, seq ASC
		FOR UPDATE
	`, productID)
	if err != nil {
		return result, err
	}

	type batchState struct {
		id       string
		quantity int
	}
	batches := make([]batchState, 0, 8)
	for rows.Next() {
		var b batchState
		if err := rows.Scan(&b.id, &b.quantity); err != nil {
			_ = rows.Close()
			return result, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return result, err
	}
	_ = rows.Close()

	remaining := qty
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		used := remaining
		if used > b.quantity {
			used = b.quantity
		}
		_, err := pgTx.ExecContext(ctx, `
			UPDATE stock_batches
			SET quantity = quantity - $1
			WHERE id = $2
		`, used, b.id)
		if err != nil {
			return result, err
		}
		remaining -= used
	}

	result.Consumed = qty - remaining
	result.Shortfall = remaining
	return result, nil
}

func (s *Store) ExpiringBatches(ctx context.Context, withinDays int) ([]domain.StockBatch, error) {
	if withinDays < 1 {
		withinDays = 60
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, expiry_date, received_at
		FROM stock_batches
		WHERE quantity > 0
			AND expiry_date IS NOT NULL
			AND expiry_date <= CURRENT_DATE + $1 * INTERVAL '1 day'
		ORDER BY expiry_date ASC, received_at ASC
	`, withinDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBatches(rows)
}

func (s *Store) NearestExpiry(ctx context.Context, productID string) (*time.Time, error) {
	var expiry sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(expiry_date)
		FROM stock_batches
		WHERE product_id = $1 AND quantity > 0 AND expiry_date IS NOT NULL
	`, productID).Scan(&expiry)
	if err != nil {
		return nil, err
	}
	if !expiry.Valid {
		return nil, nil
	}
	e := dateUTC(expiry.Time)
	return &e, nil
}

func (s *Store) ReconcileStock(ctx context.Context) ([]domain.StockDiscrepancy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.stock, COALESCE(SUM(b.quantity), 0)
		FROM products p
		LEFT JOIN stock_batches b ON b.product_id = p.id
		WHERE p.active = true
		GROUP BY p.id, p.name, p.stock
		HAVING p.stock <> COALESCE(SUM(b.quantity), 0)
		ORDER BY p.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discrepancies := make([]domain.StockDiscrepancy, 0, 16)
	for rows.Next() {
		var d domain.StockDiscrepancy
		if err := rows.Scan(&d.ProductID, &d.ProductName, &d.FlatStock, &d.BatchTotal); err != nil {
			return nil, err
		}
		d.Delta = d.FlatStock - d.BatchTotal
		discrepancies = append(discrepancies, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return discrepancies, nil
}

func (s *Store) CreateMovement(ctx context.Context, movement domain.StockMovement) (*domain.StockMovement, error) {
	if movement.ProductID == "" || movement.Quantity < 1 {
		return nil, store.ErrInvalidOrder
	}
	if movement.ID == "" {
		movement.ID = xid.New("mv")
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_movements (
			id, product_id, type, quantity, reason, supplier,
			payment_terms, due_date, payment_status, created_by, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, movement.ID, movement.ProductID, movement.Type, movement.Quantity, strings.TrimSpace(movement.Reason),
		strings.TrimSpace(movement.Supplier), nullIfEmpty(string(movement.PaymentTerms)), nullDate(movement.DueDate),
		nullIfEmpty(string(movement.PaymentStatus)), movement.CreatedBy, movement.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := movement
	return &created, nil
}

func (s *Store) ListMovements(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, type, quantity, reason, supplier,
			payment_terms, due_date, payment_status, created_by, created_at
		FROM stock_movements
		WHERE ($1 = '' OR product_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := make([]domain.StockMovement, 0, limit)
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movements, nil
}

// UpdateMovementPaymentStatus flips the supplier payment flag on a
// stock-in movement. Stock-out movements carry no payment obligation.
func (s *Store) UpdateMovementPaymentStatus(ctx context.Context, movementID string, status domain.PaymentStatus) (*domain.StockMovement, error) {
	if status != domain.PaymentPaid && status != domain.PaymentUnpaid {
		return nil, store.ErrInvalidOrder
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var movementType domain.StockType
	var current sql.NullString
	err = pgTx.QueryRowContext(ctx, `
		SELECT type, payment_status
		FROM stock_movements
		WHERE id = $1
		FOR UPDATE
	`, movementID).Scan(&movementType, &current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if movementType != domain.StockIn || !current.Valid || current.String == "" {
		return nil, store.ErrInvalidOrder
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE stock_movements
		SET payment_status = $2
		WHERE id = $1
	`, movementID, status)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	return s.getMovementByID(ctx, movementID)
}

func (s *Store) getMovementByID(ctx context.Context, movementID string) (*domain.StockMovement, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, type, quantity, reason, supplier,
			payment_terms, due_date, payment_status, created_by, created_at
		FROM stock_movements
		WHERE id = $1
	`, movementID)

	movement, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order, deltas []store.CheckoutDelta) (*domain.Order, []store.FIFOResult, error) {
	if len(order.Items) == 0 {
		return nil, nil, store.ErrInvalidOrder
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	if order.ID == "" {
		order.ID = xid.New("ord")
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusCompleted
	}

	fifoResults := make([]store.FIFOResult, 0, len(deltas))
	for _, delta := range deltas {
		if delta.Units < 1 {
			return nil, nil, store.ErrInvalidOrder
		}

		res, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = GREATEST(0, stock - $2), updated_at = now()
			WHERE id = $1
		`, delta.ProductID, delta.Units)
		if err != nil {
			return nil, nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, nil, err
		}
		if affected == 0 {
			return nil, nil, store.ErrNotFound
		}

		fifo, err := consumeBatchesFIFOTx(ctx, pgTx, delta.ProductID, delta.Units)
		if err != nil {
			return nil, nil, err
		}
		fifoResults = append(fifoResults, fifo)
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO orders (
			id, status, subtotal, item_discount_total, order_discount_amount,
			tax_rate_percent, tax_amount, total, payment_method, cash_received,
			change, cashier_username, void_reason, voided_at, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, order.ID, order.Status, order.Subtotal, order.ItemDiscountTotal, order.OrderDiscountAmount,
		order.TaxRatePercent, order.TaxAmount, order.Total, order.PaymentMethod, order.CashReceived,
		order.Change, order.CashierUsername, nullIfEmpty(order.VoidReason), nullTime(order.VoidedAt), order.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	for _, item := range order.Items {
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, unit, qty, units,
				unit_price, discount_amount, line_total, refunded_qty
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, order.ID, item.ProductID, item.ProductName, item.Unit, item.Qty, item.Units,
			item.UnitPrice, item.DiscountAmount, item.LineTotal, item.RefundedQty)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, nil, err
	}

	created := order
	return &created, fifoResults, nil
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT id, status, subtotal, item_discount_total, order_discount_amount,
			tax_rate_percent, tax_amount, total, payment_method, cash_received,
			change, cashier_username, void_reason, voided_at, created_at
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	items, err := s.listOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, subtotal, item_discount_total, order_discount_amount,
			tax_rate_percent, tax_amount, total, payment_method, cash_received,
			change, cashier_username, void_reason, voided_at, created_at
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.listOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// VoidOrder cancels a completed order and puts its units back on the
// flat counters. The batch ledger is left alone: returned goods go to
// a fresh batch via stock-in if they are still sellable.
func (s *Store) VoidOrder(ctx context.Context, id string, reason string, at time.Time) (*domain.Order, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var status domain.OrderStatus
	err = pgTx.QueryRowContext(ctx, `
		SELECT status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status != domain.OrderStatusCompleted {
		return nil, store.ErrInvalidOrder
	}

	itemRows, err := pgTx.QueryContext(ctx, `
		SELECT product_id, units
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	type restoreLine struct {
		productID string
		units     int
	}
	restores := make([]restoreLine, 0, 8)
	for itemRows.Next() {
		var line restoreLine
		if err := itemRows.Scan(&line.productID, &line.units); err != nil {
			_ = itemRows.Close()
			return nil, err
		}
		restores = append(restores, line)
	}
	if err := itemRows.Err(); err != nil {
		_ = itemRows.Close()
		return nil, err
	}
	_ = itemRows.Close()

	for _, line := range restores {
		_, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock + $2, updated_at = now()
			WHERE id = $1
		`, line.productID, line.units)
		if err != nil {
			return nil, err
		}
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, void_reason = $3, voided_at = $4
		WHERE id = $1 AND status = $5
	`, id, domain.OrderStatusCancelled, reason, at, domain.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	return s.GetOrderByID(ctx, id)
}

func (s *Store) CreateRefund(ctx context.Context, refund domain.Refund) (*domain.Refund, error) {
	if refund.OrderID == "" || len(refund.Items) == 0 || strings.TrimSpace(refund.Reason) == "" {
		return nil, store.ErrInvalidOrder
	}
	if refund.ID == "" {
		refund.ID = xid.New("rf")
	}
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now().UTC()
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var status domain.OrderStatus
	err = pgTx.QueryRowContext(ctx, `
		SELECT status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, refund.OrderID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status != domain.OrderStatusCompleted && status != domain.OrderStatusRefunded {
		return nil, store.ErrInvalidOrder
	}

	for _, item := range refund.Items {
		if item.Qty < 1 {
			return nil, store.ErrInvalidOrder
		}
		res, err := pgTx.ExecContext(ctx, `
			UPDATE order_items
			SET refunded_qty = refunded_qty + $3
			WHERE order_id = $1 AND product_id = $2 AND refunded_qty + $3 <= qty
		`, refund.OrderID, item.ProductID, item.Qty)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, store.ErrInvalidOrder
		}
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO refunds (id, order_id, reason, amount, processed_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, refund.ID, refund.OrderID, strings.TrimSpace(refund.Reason), refund.Amount, refund.ProcessedBy, refund.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, item := range refund.Items {
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO refund_items (refund_id, product_id, product_name, qty, unit_price, apportioned_discount, amount)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, refund.ID, item.ProductID, item.ProductName, item.Qty, item.UnitPrice, item.ApportionedDiscount, item.Amount)
		if err != nil {
			return nil, err
		}
	}

	// Flip the order once every line is fully refunded.
	_, err = pgTx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2
		WHERE id = $1
			AND NOT EXISTS (
				SELECT 1 FROM order_items
				WHERE order_id = $1 AND refunded_qty < qty
			)
	`, refund.OrderID, domain.OrderStatusRefunded)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	created := refund
	return &created, nil
}

func (s *Store) ListRefundsByOrder(ctx context.Context, orderID string) ([]domain.Refund, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, reason, amount, processed_by, created_at
		FROM refunds
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refunds := make([]domain.Refund, 0, 4)
	for rows.Next() {
		var r domain.Refund
		if err := rows.Scan(&r.ID, &r.OrderID, &r.Reason, &r.Amount, &r.ProcessedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.CreatedAt = r.CreatedAt.UTC()
		refunds = append(refunds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range refunds {
		itemRows, err := s.db.QueryContext(ctx, `
			SELECT product_id, product_name, qty, unit_price, apportioned_discount, amount
			FROM refund_items
			WHERE refund_id = $1
		`, refunds[i].ID)
		if err != nil {
			return nil, err
		}
		items := make([]domain.RefundItem, 0, 4)
		for itemRows.Next() {
			var item domain.RefundItem
			if err := itemRows.Scan(&item.ProductID, &item.ProductName, &item.Qty, &item.UnitPrice, &item.ApportionedDiscount, &item.Amount); err != nil {
				_ = itemRows.Close()
				return nil, err
			}
			items = append(items, item)
		}
		if err := itemRows.Err(); err != nil {
			_ = itemRows.Close()
			return nil, err
		}
		_ = itemRows.Close()
		refunds[i].Items = items
	}
	return refunds, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" || user.Role == "" {
		return store.ErrInvalidOrder
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (username) DO NOTHING
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password = $2
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) listOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, unit, qty, units, unit_price, discount_amount, line_total, refunded_qty
		FROM order_items
		WHERE order_id = $1
		ORDER BY seq ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0, 8)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Unit, &item.Qty, &item.Units, &item.UnitPrice, &item.DiscountAmount, &item.LineTotal, &item.RefundedQty); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var order domain.Order
	var voidReason sql.NullString
	var voidedAt sql.NullTime
	err := row.Scan(&order.ID, &order.Status, &order.Subtotal, &order.ItemDiscountTotal, &order.OrderDiscountAmount,
		&order.TaxRatePercent, &order.TaxAmount, &order.Total, &order.PaymentMethod, &order.CashReceived,
		&order.Change, &order.CashierUsername, &voidReason, &voidedAt, &order.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	order.CreatedAt = order.CreatedAt.UTC()
	if voidReason.Valid {
		order.VoidReason = voidReason.String
	}
	if voidedAt.Valid {
		at := voidedAt.Time.UTC()
		order.VoidedAt = &at
	}
	return order, nil
}

func scanMovement(row rowScanner) (domain.StockMovement, error) {
	var movement domain.StockMovement
	var terms sql.NullString
	var dueDate sql.NullTime
	var paymentStatus sql.NullString
	err := row.Scan(&movement.ID, &movement.ProductID, &movement.Type, &movement.Quantity, &movement.Reason,
		&movement.Supplier, &terms, &dueDate, &paymentStatus, &movement.CreatedBy, &movement.CreatedAt)
	if err != nil {
		return domain.StockMovement{}, err
	}
	movement.CreatedAt = movement.CreatedAt.UTC()
	if terms.Valid {
		movement.PaymentTerms = domain.PaymentTerms(terms.String)
	}
	if dueDate.Valid {
		d := dateUTC(dueDate.Time)
		movement.DueDate = &d
	}
	if paymentStatus.Valid {
		movement.PaymentStatus = domain.PaymentStatus(paymentStatus.String)
	}
	return movement, nil
}

func scanBatches(rows *sql.Rows) ([]domain.StockBatch, error) {
	batches := make([]domain.StockBatch, 0, 32)
	for rows.Next() {
		var batch domain.StockBatch
		var expiry sql.NullTime
		if err := rows.Scan(&batch.ID, &batch.ProductID, &batch.Quantity, &expiry, &batch.ReceivedAt); err != nil {
			return nil, err
		}
		batch.ReceivedAt = batch.ReceivedAt.UTC()
		if expiry.Valid {
			e := dateUTC(expiry.Time)
			batch.ExpiryDate = &e
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batches, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func dateUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func nullIfEmpty(val string) any {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	return val
}

func nullDate(val *time.Time) any {
	if val == nil {
		return nil
	}
	return dateUTC(*val)
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return val.UTC()
}
