package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/models"
)

// GetOrg resolves one organization
func (db *Database) GetOrg(ctx context.Context, id string) (models.Org, error) {
	var o models.Org
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, org_type, is_active, created_at
		FROM organizations WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.Type, &o.IsActive, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Org{}, apperr.NotFoundf("organization %s not found", id)
	}
	if err != nil {
		return models.Org{}, fmt.Errorf("get organization: %w", err)
	}
	return o, nil
}

// ListSupplierOrgs returns all active supplier organizations
func (db *Database) ListSupplierOrgs(ctx context.Context) ([]models.Org, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, org_type, is_active, created_at
		FROM organizations
		WHERE org_type = 'supplier' AND is_active = true
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list supplier organizations: %w", err)
	}
	defer rows.Close()

	var out []models.Org
	for rows.Next() {
		var o models.Org
		if err := rows.Scan(&o.ID, &o.Name, &o.Type, &o.IsActive, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetAccount resolves one account
func (db *Database) GetAccount(ctx context.Context, id string) (models.Account, error) {
	var a models.Account
	err := db.Pool.QueryRow(ctx, `
		SELECT id, org_id, role, email, full_name, phone
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.OrgID, &a.Role, &a.Email, &a.FullName, &a.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, apperr.NotFoundf("account %s not found", id)
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetProductsForSupplier returns the requested products that belong to
// the supplier, keyed by product id. Missing or foreign products are
// simply absent from the result.
func (db *Database) GetProductsForSupplier(ctx context.Context, supplierOrgID string, productIDs []string) (map[string]models.Product, error) {
	if len(productIDs) == 0 {
		return map[string]models.Product{}, nil
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, supplier_org_id, name, unit, price, stock_quantity, min_order_quantity, is_active
		FROM products
		WHERE supplier_org_id = $1 AND id = ANY($2)
	`, supplierOrgID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.Product, len(productIDs))
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.SupplierOrgID, &p.Name, &p.Unit, &p.Price,
			&p.StockQuantity, &p.MinOrderQuantity, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
