package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/actiongate/actiongate/internal/database"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
)

// SQLiteOverrideRepository implements Override persistence for SQLite.
// UUIDs are stored as TEXT in canonical string form.
type SQLiteOverrideRepository struct {
	db *sql.DB
}

// Create inserts a new Override into the SQLite database.
func (s *SQLiteOverrideRepository) Create(ctx context.Context, override *permissionDomain.Override) error {
	querier := database.GetTx(ctx, s.db)

	capabilitiesJSON, err := json.Marshal(override.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal override capabilities")
	}

	query := `INSERT INTO permission_overrides (id, action_type, capabilities, is_active, description, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		override.ID.String(),
		override.ActionType,
		string(capabilitiesJSON),
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

// Update modifies an existing Override in the SQLite database.
// The action type is the override's key and is never changed by updates.
func (s *SQLiteOverrideRepository) Update(ctx context.Context, override *permissionDomain.Override) error {
	querier := database.GetTx(ctx, s.db)

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
		string(capabilitiesJSON),
		override.IsActive,
		override.Description,
		override.UpdatedAt,
		override.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update permission override")
	}
	return nil
}

// GetByActionType retrieves the Override for an action from the SQLite
// database. Returns ErrOverrideNotFound if no override exists for the action.
func (s *SQLiteOverrideRepository) GetByActionType(ctx context.Context, actionType string) (*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, action_type, capabilities, is_active, description, created_at, updated_at
			  FROM permission_overrides WHERE action_type = ?`

	return s.scanOverride(querier.QueryRowContext(ctx, query, actionType))
}

// Delete removes the Override for an action from the SQLite database,
// reverting the action to its declared capability defaults.
// Returns ErrOverrideNotFound if no override exists for the action.
func (s *SQLiteOverrideRepository) Delete(ctx context.Context, actionType string) error {
	querier := database.GetTx(ctx, s.db)

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
func (s *SQLiteOverrideRepository) List(ctx context.Context, offset, limit int) ([]*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, s.db)

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
		var idStr string
		var capabilitiesJSON string

		err := rows.Scan(
			&idStr,
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

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse override id")
		}
		override.ID = id

		if err := json.Unmarshal([]byte(capabilitiesJSON), &override.Capabilities); err != nil {
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
func (s *SQLiteOverrideRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM permission_overrides`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count permission overrides")
	}
	return count, nil
}

// scanOverride scans a single override row, translating sql.ErrNoRows into
// ErrOverrideNotFound.
func (s *SQLiteOverrideRepository) scanOverride(row *sql.Row) (*permissionDomain.Override, error) {
	var override permissionDomain.Override
	var idStr string
	var capabilitiesJSON string

	err := row.Scan(
		&idStr,
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

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse override id")
	}
	override.ID = id

	if err := json.Unmarshal([]byte(capabilitiesJSON), &override.Capabilities); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal override capabilities")
	}

	return &override, nil
}

// NewSQLiteOverrideRepository creates a new SQLite Override repository.
func NewSQLiteOverrideRepository(db *sql.DB) *SQLiteOverrideRepository {
	return &SQLiteOverrideRepository{db: db}
}
