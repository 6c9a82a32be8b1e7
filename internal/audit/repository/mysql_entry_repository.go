package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
	"github.com/actiongate/actiongate/internal/database"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// MySQLEntryRepository implements audit Entry persistence for MySQL.
// UUIDs are stored as BINARY(16) for efficient indexing.
type MySQLEntryRepository struct {
	db *sql.DB
}

// Create inserts a new audit Entry into the MySQL database.
// Handles nil metadata and nil credential id as database NULL.
func (m *MySQLEntryRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry id")
	}

	// Absent credential stores as NULL
	var credentialIDBytes []byte
	if entry.CredentialID != nil {
		credentialIDBytes, err = entry.CredentialID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit entry credential_id")
		}
	}

	metadataJSON, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_entries (id, request_id, credential_id, action_type, outcome, duration_ms, metadata, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		entry.RequestID,
		credentialIDBytes,
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
func (m *MySQLEntryRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, m.db)

	conditions, args := timeConditions(createdAtFrom, createdAtTo, func(int) string {
		return "?"
	})

	query := `SELECT id, request_id, credential_id, action_type, outcome, duration_ms, metadata, signature, created_at
			  FROM audit_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

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
		var idBytes, credentialIDBytes []byte
		var metadataJSON []byte
		var outcome string

		err := rows.Scan(
			&idBytes,
			&entry.RequestID,
			&credentialIDBytes,
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

		if err := entry.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry id")
		}

		if credentialIDBytes != nil {
			var credentialID uuid.UUID
			if err := credentialID.UnmarshalBinary(credentialIDBytes); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit entry credential_id")
			}
			entry.CredentialID = &credentialID
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
func (m *MySQLEntryRepository) Count(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	conditions, args := timeConditions(createdAtFrom, createdAtTo, func(int) string {
		return "?"
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
func (m *MySQLEntryRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_entries WHERE created_at < ?`
		var count int64
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit entries")
		}
		return count, nil
	}

	query := `DELETE FROM audit_entries WHERE created_at < ?`
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

// NewMySQLEntryRepository creates a new MySQL audit Entry repository.
func NewMySQLEntryRepository(db *sql.DB) *MySQLEntryRepository {
	return &MySQLEntryRepository{db: db}
}
