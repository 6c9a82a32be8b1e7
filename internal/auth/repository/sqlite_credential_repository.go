package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	"github.com/actiongate/actiongate/internal/database"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// SQLiteCredentialRepository implements Credential persistence for SQLite.
// Stores UUIDs as TEXT with transaction support via database.GetTx().
type SQLiteCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new Credential into the SQLite database.
func (s *SQLiteCredentialRepository) Create(ctx context.Context, credential *authDomain.Credential) error {
	querier := database.GetTx(ctx, s.db)

	capabilitiesJSON, err := json.Marshal(credential.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential capabilities")
	}

	query := `INSERT INTO credentials (id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		credential.ID.String(),
		credential.UserID.String(),
		credential.TokenHash,
		credential.Name,
		capabilitiesJSON,
		credential.IsActive,
		credential.ExpiresAt,
		credential.LastUsedAt,
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// Update modifies an existing Credential in the SQLite database.
// The token hash is immutable and never touched by updates.
func (s *SQLiteCredentialRepository) Update(ctx context.Context, credential *authDomain.Credential) error {
	querier := database.GetTx(ctx, s.db)

	capabilitiesJSON, err := json.Marshal(credential.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential capabilities")
	}

	query := `UPDATE credentials
			  SET name = ?,
				  capabilities = ?,
				  is_active = ?,
				  expires_at = ?,
				  last_used_at = ?,
				  updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		credential.Name,
		capabilitiesJSON,
		credential.IsActive,
		credential.ExpiresAt,
		credential.LastUsedAt,
		credential.UpdatedAt,
		credential.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}

	return nil
}

// Get retrieves a Credential by ID from the SQLite database.
// Returns ErrCredentialNotFound if the credential doesn't exist.
func (s *SQLiteCredentialRepository) Get(ctx context.Context, credentialID uuid.UUID) (*authDomain.Credential, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials WHERE id = ?`

	return s.scanCredential(querier.QueryRowContext(ctx, query, credentialID.String()))
}

// GetByName retrieves a Credential by its unique name from the SQLite database.
// Returns ErrCredentialNotFound if no credential uses the name.
func (s *SQLiteCredentialRepository) GetByName(ctx context.Context, name string) (*authDomain.Credential, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials WHERE name = ?`

	return s.scanCredential(querier.QueryRowContext(ctx, query, name))
}

// GetByTokenHash retrieves a Credential by its token hash from the SQLite
// database. This is the authentication lookup. Returns ErrCredentialNotFound
// if no credential matches the hash.
func (s *SQLiteCredentialRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Credential, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials WHERE token_hash = ?`

	return s.scanCredential(querier.QueryRowContext(ctx, query, tokenHash))
}

// List retrieves credentials ordered by ID descending (newest first) with pagination.
// Returns empty slice if no credentials are found.
func (s *SQLiteCredentialRepository) List(ctx context.Context, offset, limit int) ([]*authDomain.Credential, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	credentials := make([]*authDomain.Credential, 0)

	for rows.Next() {
		var credential authDomain.Credential
		var idStr, userIDStr string
		var capabilitiesJSON []byte

		err := rows.Scan(
			&idStr,
			&userIDStr,
			&credential.TokenHash,
			&credential.Name,
			&capabilitiesJSON,
			&credential.IsActive,
			&credential.ExpiresAt,
			&credential.LastUsedAt,
			&credential.CreatedAt,
			&credential.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}

		if credential.ID, err = uuid.Parse(idStr); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse credential ID")
		}

		if credential.UserID, err = uuid.Parse(userIDStr); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse user ID")
		}

		if err := json.Unmarshal(capabilitiesJSON, &credential.Capabilities); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal credential capabilities")
		}

		credentials = append(credentials, &credential)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}

	return credentials, nil
}

// Count returns the total number of credentials.
func (s *SQLiteCredentialRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count credentials")
	}
	return count, nil
}

// TouchLastUsed updates the credential's last-used timestamp.
func (s *SQLiteCredentialRepository) TouchLastUsed(ctx context.Context, credentialID uuid.UUID, usedAt time.Time) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE credentials SET last_used_at = ? WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, usedAt, credentialID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to touch credential last used")
	}
	return nil
}

// scanCredential scans a single credential row, translating sql.ErrNoRows into
// ErrCredentialNotFound.
func (s *SQLiteCredentialRepository) scanCredential(row *sql.Row) (*authDomain.Credential, error) {
	var credential authDomain.Credential
	var idStr, userIDStr string
	var capabilitiesJSON []byte

	err := row.Scan(
		&idStr,
		&userIDStr,
		&credential.TokenHash,
		&credential.Name,
		&capabilitiesJSON,
		&credential.IsActive,
		&credential.ExpiresAt,
		&credential.LastUsedAt,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}

	if credential.ID, err = uuid.Parse(idStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse credential ID")
	}

	if credential.UserID, err = uuid.Parse(userIDStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse user ID")
	}

	if err := json.Unmarshal(capabilitiesJSON, &credential.Capabilities); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential capabilities")
	}

	return &credential, nil
}

// NewSQLiteCredentialRepository creates a new SQLite Credential repository.
func NewSQLiteCredentialRepository(db *sql.DB) *SQLiteCredentialRepository {
	return &SQLiteCredentialRepository{db: db}
}
