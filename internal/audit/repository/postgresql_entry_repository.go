// Package repository implements audit entry persistence for PostgreSQL,
// MySQL, and SQLite. Entries are append-only: there is no update operation,
// only insertion, filtered listing, and retention cleanup.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
	"github.com/actiongate/actiongate/internal/database"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// PostgreSQLEntryRepository implements audit Entry persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLEntryRepository struct {
	db *sql.DB
}

// Create inserts a new audit Entry into the PostgreSQL database.
// Handles nil metadata and nil credential id as database NULL.
func (p *PostgreSQLEntryRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_entries (id, request_id, credential_id, action_type, outcome, duration_ms, metadata, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.RequestID,
		entry.CredentialID,
		entry.ActionType,
		string(entry.Outcome),
		entry.DurationMS,
		metadataJSON,
		entry.Signature,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	return nil
}

// List retrieves audit entries ordered by created_at descending (newest
// first) with pagination and optional inclusive time filters (nil means no
// bound). Returns empty slice if no entries match.
func (p *PostgreSQLEntryRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	conditions, args := timeConditions(createdAtFrom, createdAtTo, func(n int) string {
		return fmt.Sprintf("$%d", n)
	})

	query := `SELECT id, request_id, credential_id, action_type, outcome, duration_ms, metadata, signature, created_at
			  FROM audit_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	entries := make([]*auditDomain.Entry, 0)
	for rows.Next() {
		var entry auditDomain.Entry
		var metadataJSON []byte
		var outcome string

		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.CredentialID,
			&entry.ActionType,
			&outcome,
			&entry.DurationMS,
			&metadataJSON,
			&entry.Signature,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}

		entry.Outcome = auditDomain.Outcome(outcome)

		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit entry metadata")
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

// Count returns the number of audit entries matching the optional inclusive
// time filters (nil means no bound).
func (p *PostgreSQLEntryRepository) Count(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	conditions, args := timeConditions(createdAtFrom, createdAtTo, func(n int) string {
		return fmt.Sprintf("$%d", n)
	})

	query := `SELECT COUNT(*) FROM audit_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int64
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit entries")
	}
	return count, nil
}

// DeleteOlderThan removes audit entries created before the given timestamp.
// When dryRun is true, returns the count via SELECT COUNT(*) without
// deletion. When false, executes the DELETE and returns affected rows.
func (p *PostgreSQLEntryRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_entries WHERE created_at < $1`
		var count int64
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit entries")
		}
		return count, nil
	}

	query := `DELETE FROM audit_entries WHERE created_at < $1`
	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit entries")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}

	return count, nil
}

// marshalMetadata serializes entry metadata, mapping nil to database NULL.
func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit entry metadata")
	}
	return metadataJSON, nil
}

// timeConditions builds the WHERE fragments for the optional created_at
// bounds. The placeholder function maps a 1-based argument position to the
// driver's placeholder syntax.
func timeConditions(
	createdAtFrom, createdAtTo *time.Time,
	placeholder func(n int) string,
) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, "created_at >= "+placeholder(len(args)))
	}

	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, "created_at <= "+placeholder(len(args)))
	}

	return conditions, args
}

// NewPostgreSQLEntryRepository creates a new PostgreSQL audit Entry repository.
func NewPostgreSQLEntryRepository(db *sql.DB) *PostgreSQLEntryRepository {
	return &PostgreSQLEntryRepository{db: db}
}
