package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/models"
	"github.com/supplylink/core-service/internal/order"
)

const orderColumns = `id, supplier_org_id, consumer_org_id, created_by_account_id, status, total_amount, version, created_at, updated_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.SupplierOrgID, &o.ConsumerOrgID, &o.CreatedByAccountID,
		&o.Status, &o.TotalAmount, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateOrder inserts the order and its items in one transaction.
// The approved link and the product rows are re-checked inside the
// transaction with shared row locks so a concurrent unlink or catalog
// change cannot slip between the caller's read-time checks and the
// insert.
func (db *Database) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return models.Order{}, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var linkID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM links
		WHERE supplier_org_id = $1 AND consumer_org_id = $2 AND status = 'APPROVED'
		FOR SHARE
	`, o.SupplierOrgID, o.ConsumerOrgID).Scan(&linkID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, apperr.Preconditionf("no approved link between %s and %s", o.ConsumerOrgID, o.SupplierOrgID)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("check link: %w", err)
	}

	if err := checkProducts(ctx, tx, o); err != nil {
		return models.Order{}, err
	}

	created, err := scanOrder(tx.QueryRow(ctx, `
		INSERT INTO orders (supplier_org_id, consumer_org_id, created_by_account_id, status, total_amount)
		VALUES ($1, $2, $3, 'PENDING', $4)
		RETURNING `+orderColumns,
		o.SupplierOrgID, o.ConsumerOrgID, o.CreatedByAccountID, o.TotalAmount))
	if err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}

	created.Items = make([]models.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		var it models.OrderItem
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, order_id, product_id, quantity, unit_price, subtotal
		`, created.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal).
			Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal)
		if err != nil {
			return models.Order{}, fmt.Errorf("insert order item: %w", err)
		}
		created.Items = append(created.Items, it)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Order{}, fmt.Errorf("commit order tx: %w", err)
	}
	return created, nil
}

// checkProducts re-verifies the catalog rows the order was priced
// against, under a shared lock. Quantities are aggregated per product
// so repeated lines cannot sidestep the stock ceiling.
func checkProducts(ctx context.Context, tx pgx.Tx, o models.Order) error {
	need := make(map[string]int, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := need[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		need[item.ProductID] += item.Quantity
	}

	rows, err := tx.Query(ctx, `
		SELECT id, stock_quantity, min_order_quantity, is_active
		FROM products
		WHERE supplier_org_id = $1 AND id = ANY($2)
		FOR SHARE
	`, o.SupplierOrgID, ids)
	if err != nil {
		return fmt.Errorf("check products: %w", err)
	}
	defer rows.Close()

	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var (
			id            string
			stock, minQty int
			active        bool
		)
		if err := rows.Scan(&id, &stock, &minQty, &active); err != nil {
			return fmt.Errorf("scan product: %w", err)
		}
		found[id] = struct{}{}
		if !active {
			return apperr.Validationf("product %s is no longer available", id)
		}
		if need[id] < minQty {
			return apperr.Validationf("product %s requires minimum order quantity of %d", id, minQty)
		}
		if need[id] > stock {
			return apperr.Conflictf("product %s stock changed (available: %d)", id, stock)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return apperr.Validationf("product %s not found for supplier %s", id, o.SupplierOrgID)
		}
	}
	return nil
}

// GetOrder returns one order with its items
func (db *Database) GetOrder(ctx context.Context, id string) (models.Order, error) {
	o, err := scanOrder(db.Pool.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, apperr.NotFoundf("order %s not found", id)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("get order: %w", err)
	}

	items, err := db.orderItems(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	o.Items = items
	return o, nil
}

// UpdateOrderStatus applies a compare-and-set transition on version
func (db *Database) UpdateOrderStatus(ctx context.Context, id string, version int, to models.OrderStatus) (models.Order, error) {
	o, err := scanOrder(db.Pool.QueryRow(ctx, `
		UPDATE orders
		SET status = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+orderColumns,
		id, version, to))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := db.GetOrder(ctx, id); getErr != nil {
			return models.Order{}, getErr
		}
		return models.Order{}, apperr.Conflictf("order %s was modified concurrently", id)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("update order status: %w", err)
	}

	items, err := db.orderItems(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	o.Items = items
	return o, nil
}

// ListOrders returns matching orders with their items, newest first
func (db *Database) ListOrders(ctx context.Context, f order.Filter) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if f.SupplierOrgID != "" {
		query += fmt.Sprintf(" AND supplier_org_id = $%d", argPos)
		args = append(args, f.SupplierOrgID)
		argPos++
	}
	if f.ConsumerOrgID != "" {
		query += fmt.Sprintf(" AND consumer_org_id = $%d", argPos)
		args = append(args, f.ConsumerOrgID)
		argPos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, f.Status)
		argPos++
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := db.orderItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (db *Database) orderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal
		FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
