package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/models"
)

const linkColumns = `id, supplier_org_id, consumer_org_id, status, version, created_at, updated_at`

func scanLink(row pgx.Row) (models.Link, error) {
	var l models.Link
	err := row.Scan(&l.ID, &l.SupplierOrgID, &l.ConsumerOrgID, &l.Status, &l.Version, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// CreateLink inserts a PENDING link. The partial unique index on
// (supplier_org_id, consumer_org_id) over non-terminal statuses turns a
// duplicate request into a unique violation, reported as a conflict.
func (db *Database) CreateLink(ctx context.Context, supplierOrgID, consumerOrgID string) (models.Link, error) {
	l, err := scanLink(db.Pool.QueryRow(ctx, `
		INSERT INTO links (supplier_org_id, consumer_org_id, status)
		VALUES ($1, $2, 'PENDING')
		RETURNING `+linkColumns,
		supplierOrgID, consumerOrgID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Link{}, apperr.Conflictf("an active link already exists between %s and %s", consumerOrgID, supplierOrgID)
		}
		return models.Link{}, fmt.Errorf("create link: %w", err)
	}
	return l, nil
}

// GetLink returns one link by id
func (db *Database) GetLink(ctx context.Context, id string) (models.Link, error) {
	l, err := scanLink(db.Pool.QueryRow(ctx, `
		SELECT `+linkColumns+` FROM links WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Link{}, apperr.NotFoundf("link %s not found", id)
	}
	if err != nil {
		return models.Link{}, fmt.Errorf("get link: %w", err)
	}
	return l, nil
}

// UpdateLinkStatus applies a compare-and-set transition on version.
// A zero-row update means either the link vanished or the version
// moved; a re-read distinguishes the two.
func (db *Database) UpdateLinkStatus(ctx context.Context, id string, version int, to models.LinkStatus) (models.Link, error) {
	l, err := scanLink(db.Pool.QueryRow(ctx, `
		UPDATE links
		SET status = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+linkColumns,
		id, version, to))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := db.GetLink(ctx, id); getErr != nil {
			return models.Link{}, getErr
		}
		return models.Link{}, apperr.Conflictf("link %s was modified concurrently", id)
	}
	if err != nil {
		return models.Link{}, fmt.Errorf("update link status: %w", err)
	}
	return l, nil
}

// ListLinksForOrg returns all links touching the org, newest first
func (db *Database) ListLinksForOrg(ctx context.Context, orgID string) ([]models.Link, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+linkColumns+`
		FROM links
		WHERE supplier_org_id = $1 OR consumer_org_id = $1
		ORDER BY created_at DESC, id DESC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()
	return collectLinks(rows)
}

// ListPendingLinks returns PENDING links for a supplier org, newest first
func (db *Database) ListPendingLinks(ctx context.Context, supplierOrgID string) ([]models.Link, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+linkColumns+`
		FROM links
		WHERE supplier_org_id = $1 AND status = 'PENDING'
		ORDER BY created_at DESC, id DESC
	`, supplierOrgID)
	if err != nil {
		return nil, fmt.Errorf("list pending links: %w", err)
	}
	defer rows.Close()
	return collectLinks(rows)
}

func collectLinks(rows pgx.Rows) ([]models.Link, error) {
	var out []models.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
