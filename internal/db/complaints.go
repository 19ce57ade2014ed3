package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/complaint"
	"github.com/supplylink/core-service/internal/models"
)

const complaintColumns = `id, order_id, raised_by_account_id, assigned_to_account_id, status, description, version, created_at, updated_at, resolved_at`

func scanComplaint(row pgx.Row) (models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(&c.ID, &c.OrderID, &c.RaisedByAccountID, &c.AssignedToAccountID,
		&c.Status, &c.Description, &c.Version, &c.CreatedAt, &c.UpdatedAt, &c.ResolvedAt)
	return c, err
}

// CreateComplaint inserts an OPEN complaint. The partial unique index
// on order_id over OPEN rows turns a duplicate into a unique violation,
// reported as a conflict.
func (db *Database) CreateComplaint(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	created, err := scanComplaint(db.Pool.QueryRow(ctx, `
		INSERT INTO complaints (order_id, raised_by_account_id, status, description)
		VALUES ($1, $2, 'OPEN', $3)
		RETURNING `+complaintColumns,
		c.OrderID, c.RaisedByAccountID, c.Description))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Complaint{}, apperr.Conflictf("an open complaint already exists for order %s", c.OrderID)
		}
		return models.Complaint{}, fmt.Errorf("create complaint: %w", err)
	}
	return created, nil
}

// GetComplaint returns one complaint by id
func (db *Database) GetComplaint(ctx context.Context, id string) (models.Complaint, error) {
	c, err := scanComplaint(db.Pool.QueryRow(ctx, `
		SELECT `+complaintColumns+` FROM complaints WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Complaint{}, apperr.NotFoundf("complaint %s not found", id)
	}
	if err != nil {
		return models.Complaint{}, fmt.Errorf("get complaint: %w", err)
	}
	return c, nil
}

// UpdateComplaint applies the patch with compare-and-set on version.
// Nil patch fields leave the column untouched.
func (db *Database) UpdateComplaint(ctx context.Context, id string, version int, patch complaint.Patch) (models.Complaint, error) {
	c, err := scanComplaint(db.Pool.QueryRow(ctx, `
		UPDATE complaints
		SET status = COALESCE($3, status),
			assigned_to_account_id = COALESCE($4, assigned_to_account_id),
			resolved_at = COALESCE($5, resolved_at),
			version = version + 1,
			updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+complaintColumns,
		id, version, patch.Status, patch.AssignedToAccountID, patch.ResolvedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := db.GetComplaint(ctx, id); getErr != nil {
			return models.Complaint{}, getErr
		}
		return models.Complaint{}, apperr.Conflictf("complaint %s was modified concurrently", id)
	}
	if err != nil {
		return models.Complaint{}, fmt.Errorf("update complaint: %w", err)
	}
	return c, nil
}

// ListComplaints returns matching complaints, newest first. The
// supplier filter joins through orders since complaints carry no org
// columns of their own.
func (db *Database) ListComplaints(ctx context.Context, f complaint.Filter) ([]models.Complaint, error) {
	query := `
		SELECT c.id, c.order_id, c.raised_by_account_id, c.assigned_to_account_id,
			c.status, c.description, c.version, c.created_at, c.updated_at, c.resolved_at
		FROM complaints c
		JOIN orders o ON o.id = c.order_id
		WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if f.SupplierOrgID != "" {
		query += fmt.Sprintf(" AND o.supplier_org_id = $%d", argPos)
		args = append(args, f.SupplierOrgID)
		argPos++
	}
	if f.RaisedByAccountID != "" {
		query += fmt.Sprintf(" AND c.raised_by_account_id = $%d", argPos)
		args = append(args, f.RaisedByAccountID)
		argPos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND c.status = $%d", argPos)
		args = append(args, f.Status)
		argPos++
	}
	query += " ORDER BY c.created_at DESC, c.id DESC"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	var out []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
