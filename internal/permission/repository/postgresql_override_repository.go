// Package repository implements permission override persistence for
// PostgreSQL, MySQL, and SQLite.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/actiongate/actiongate/internal/database"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
)

// PostgreSQLOverrideRepository implements Override persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLOverrideRepository struct {
	db *sql.DB
}

// Create inserts a new Override into the PostgreSQL database.
func (p *PostgreSQLOverrideRepository) Create(ctx context.Context, override *permissionDomain.Override) error {
	querier := database.GetTx(ctx, p.db)

	capabilitiesJSON, err := json.Marshal(override.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal override capabilities")
	}

	query := `INSERT INTO permission_overrides (id, action_type, capabilities, is_active, description, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		override.ID,
		override.ActionType,
		capabilitiesJSON,
		override.IsActive,
		override.Description,
		override.CreatedAt,
		override.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create permission override")
	}
	return nil
}

// Update modifies an existing Override in the PostgreSQL database.
// The action type is the override's key and is never changed by updates.
func (p *PostgreSQLOverrideRepository) Update(ctx context.Context, override *permissionDomain.Override) error {
	querier := database.GetTx(ctx, p.db)

	capabilitiesJSON, err := json.Marshal(override.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal override capabilities")
	}

	query := `UPDATE permission_overrides
			  SET capabilities = $1,
				  is_active = $2,
				  description = $3,
				  updated_at = $4
			  WHERE id = $5`

	_, err = querier.ExecContext(
		ctx,
		query,
		capabilitiesJSON,
		override.IsActive,
		override.Description,
		override.UpdatedAt,
		override.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update permission override")
	}
	return nil
}

// GetByActionType retrieves the Override for an action from the PostgreSQL
// database. Returns ErrOverrideNotFound if no override exists for the action.
func (p *PostgreSQLOverrideRepository) GetByActionType(ctx context.Context, actionType string) (*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, action_type, capabilities, is_active, description, created_at, updated_at
			  FROM permission_overrides WHERE action_type = $1`

	return p.scanOverride(querier.QueryRowContext(ctx, query, actionType))
}

// Delete removes the Override for an action from the PostgreSQL database,
// reverting the action to its declared capability defaults.
// Returns ErrOverrideNotFound if no override exists for the action.
func (p *PostgreSQLOverrideRepository) Delete(ctx context.Context, actionType string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM permission_overrides WHERE action_type = $1`

	result, err := querier.ExecContext(ctx, query, actionType)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete permission override")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}

	if rowsAffected == 0 {
		return permissionDomain.ErrOverrideNotFound
	}

	return nil
}

// List retrieves overrides ordered by action type with pagination.
// Returns empty slice if no overrides are found.
func (p *PostgreSQLOverrideRepository) List(ctx context.Context, offset, limit int) ([]*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, action_type, capabilities, is_active, description, created_at, updated_at
			  FROM permission_overrides
			  ORDER BY action_type ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permission overrides")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	overrides := make([]*permissionDomain.Override, 0)

	for rows.Next() {
		var override permissionDomain.Override
		var capabilitiesJSON []byte

		err := rows.Scan(
			&override.ID,
			&override.ActionType,
			&capabilitiesJSON,
			&override.IsActive,
			&override.Description,
			&override.CreatedAt,
			&override.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission override")
		}

		if err := json.Unmarshal(capabilitiesJSON, &override.Capabilities); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal override capabilities")
		}

		overrides = append(overrides, &override)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permission overrides")
	}

	return overrides, nil
}

// Count returns the total number of permission overrides.
func (p *PostgreSQLOverrideRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM permission_overrides`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count permission overrides")
	}
	return count, nil
}

// scanOverride scans a single override row, translating sql.ErrNoRows into
// ErrOverrideNotFound.
func (p *PostgreSQLOverrideRepository) scanOverride(row *sql.Row) (*permissionDomain.Override, error) {
	var override permissionDomain.Override
	var capabilitiesJSON []byte

	err := row.Scan(
		&override.ID,
		&override.ActionType,
		&capabilitiesJSON,
		&override.IsActive,
		&override.Description,
		&override.CreatedAt,
		&override.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, permissionDomain.ErrOverrideNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission override")
	}

	if err := json.Unmarshal(capabilitiesJSON, &override.Capabilities); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal override capabilities")
	}

	return &override, nil
}

// NewPostgreSQLOverrideRepository creates a new PostgreSQL Override repository.
func NewPostgreSQLOverrideRepository(db *sql.DB) *PostgreSQLOverrideRepository {
	return &PostgreSQLOverrideRepository{db: db}
}
