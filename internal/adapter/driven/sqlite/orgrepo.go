package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OrganizationStore = (*OrgRepo)(nil)

// OrgRepo is the SQLite implementation of the OrganizationStore port interface.
type OrgRepo struct {
	db *DB
}

// NewOrgRepo creates a new OrgRepo backed by the given DB.
func NewOrgRepo(db *DB) *OrgRepo {
	return &OrgRepo{db: db}
}

// UpsertOrganization inserts the organization or updates its name, reporting
// whether a new row was created. Runs in one writer transaction.
func (r *OrgRepo) UpsertOrganization(ctx context.Context, orgID, name string) (model.Organization, bool, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.Organization{}, false, fmt.Errorf("begin upsert organization %q: %w: %w", orgID, driven.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM organizations WHERE organization_uuid = ?`, orgID).Scan(&exists)
	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return model.Organization{}, false, fmt.Errorf("lookup organization %q: %w: %w", orgID, driven.ErrStoreUnavailable, err)
	}

	now := formatTime(time.Now())
	if created {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO organizations (organization_uuid, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			orgID, name, now, now)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE organizations SET name = ?, updated_at = ? WHERE organization_uuid = ?`,
			name, now, orgID)
	}
	if err != nil {
		return model.Organization{}, false, fmt.Errorf("write organization %q: %w: %w", orgID, driven.ErrStoreUnavailable, err)
	}

	org, err := scanOrganization(tx.QueryRowContext(ctx, selectOrganization, orgID))
	if err != nil {
		return model.Organization{}, false, fmt.Errorf("read organization %q: %w: %w", orgID, driven.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Organization{}, false, fmt.Errorf("commit organization %q: %w: %w", orgID, driven.ErrStoreUnavailable, err)
	}
	return org, created, nil
}

// GetOrganization returns the organization with the given ID.
func (r *OrgRepo) GetOrganization(ctx context.Context, orgID string) (model.Organization, error) {
	org, err := scanOrganization(r.db.Reader.QueryRowContext(ctx, selectOrganization, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Organization{}, fmt.Errorf("organization %q: %w", orgID, driven.ErrNotFound)
	}
	if err != nil {
		return model.Organization{}, fmt.Errorf("get organization %q: %w: %w", orgID, driven.ErrStoreUnavailable, err)
	}
	return org, nil
}

const selectOrganization = `SELECT organization_uuid, name, created_at, updated_at FROM organizations WHERE organization_uuid = ?`

func scanOrganization(row *sql.Row) (model.Organization, error) {
	var org model.Organization
	var createdAt, updatedAt string
	if err := row.Scan(&org.ID, &org.Name, &createdAt, &updatedAt); err != nil {
		return model.Organization{}, err
	}

	var err error
	if org.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Organization{}, fmt.Errorf("parse created_at: %w", err)
	}
	if org.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Organization{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return org, nil
}
