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

// MySQLOverrideRepository implements Override persistence for MySQL.
// UUIDs are stored as BINARY(16) for efficient indexing.
type MySQLOverrideRepository struct {
	db *sql.DB
}

// Create inserts a new Override into the MySQL database.
func (m *MySQLOverrideRepository) Create(ctx context.Context, override *permissionDomain.Override) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := override.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal override id")
	}

	capabilitiesJSON, err := json.Marshal(override.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal override capabilities")
	}

	query := `INSERT INTO permission_overrides (id, action_type, capabilities, is_active, description, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
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

// Update modifies an existing Override in the MySQL database.
// The action type is the override's key and is never changed by updates.
func (m *MySQLOverrideRepository) Update(ctx context.Context, override *permissionDomain.Override) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := override.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal override id")
	}

	capabilitiesJSON, err := json.Marshal(override.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal override capabilities")
	}

	query := `UPDATE permission_overrides
			  SET capabilities = ?,
				  is_active = ?,
				  description = ?,
				  updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		capabilitiesJSON,
		override.IsActive,
		override.Description,
		override.UpdatedAt,
		idBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update permission override")
	}
	return nil
}

// GetByActionType retrieves the Override for an action from the MySQL
// database. Returns ErrOverrideNotFound if no override exists for the action.
func (m *MySQLOverrideRepository) GetByActionType(ctx context.Context, actionType string) (*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, action_type, capabilities, is_active, description, created_at, updated_at
			  FROM permission_overrides WHERE action_type = ?`

	return m.scanOverride(querier.QueryRowContext(ctx, query, actionType))
}

// Delete removes the Override for an action from the MySQL database,
// reverting the action to its declared capability defaults.
// Returns ErrOverrideNotFound if no override exists for the action.
func (m *MySQLOverrideRepository) Delete(ctx context.Context, actionType string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM permission_overrides WHERE action_type = ?`

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
func (m *MySQLOverrideRepository) List(ctx context.Context, offset, limit int) ([]*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, action_type, capabilities, is_active, description, created_at, updated_at
			  FROM permission_overrides
			  ORDER BY action_type ASC
			  LIMIT ? OFFSET ?`

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
		var idBytes []byte
		var capabilitiesJSON []byte

		err := rows.Scan(
			&idBytes,
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

		if err := override.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal override id")
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
func (m *MySQLOverrideRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM permission_overrides`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count permission overrides")
	}
	return count, nil
}

// scanOverride scans a single override row, translating sql.ErrNoRows into
// ErrOverrideNotFound.
func (m *MySQLOverrideRepository) scanOverride(row *sql.Row) (*permissionDomain.Override, error) {
	var override permissionDomain.Override
	var idBytes []byte
	var capabilitiesJSON []byte

	err := row.Scan(
		&idBytes,
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

	if err := override.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal override id")
	}

	if err := json.Unmarshal(capabilitiesJSON, &override.Capabilities); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal override capabilities")
	}

	return &override, nil
}

// NewMySQLOverrideRepository creates a new MySQL Override repository.
func NewMySQLOverrideRepository(db *sql.DB) *MySQLOverrideRepository {
	return &MySQLOverrideRepository{db: db}
}
