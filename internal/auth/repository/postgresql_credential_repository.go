// Package repository implements credential persistence for PostgreSQL, MySQL,
// and SQLite.
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

// PostgreSQLCredentialRepository implements Credential persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new Credential into the PostgreSQL database.
// Uses transaction support via database.GetTx(). Returns an error if capability
// marshaling or database insertion fails.
func (p *PostgreSQLCredentialRepository) Create(ctx context.Context, credential *authDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	capabilitiesJSON, err := json.Marshal(credential.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential capabilities")
	}

	query := `INSERT INTO credentials (id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = querier.ExecContext(
		ctx,
		query,
		credential.ID,
		credential.UserID,
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

// Update modifies an existing Credential in the PostgreSQL database.
// The token hash is immutable and never touched by updates.
func (p *PostgreSQLCredentialRepository) Update(ctx context.Context, credential *authDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	capabilitiesJSON, err := json.Marshal(credential.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential capabilities")
	}

	query := `UPDATE credentials
			  SET name = $1,
				  capabilities = $2,
				  is_active = $3,
				  expires_at = $4,
				  last_used_at = $5,
				  updated_at = $6
			  WHERE id = $7`

	_, err = querier.ExecContext(
		ctx,
		query,
		credential.Name,
		capabilitiesJSON,
		credential.IsActive,
		credential.ExpiresAt,
		credential.LastUsedAt,
		credential.UpdatedAt,
		credential.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}

	return nil
}

// Get retrieves a Credential by ID from the PostgreSQL database.
// Uses transaction support via database.GetTx(). Returns ErrCredentialNotFound if
// the credential doesn't exist, or an error if the database query fails.
func (p *PostgreSQLCredentialRepository) Get(ctx context.Context, credentialID uuid.UUID) (*authDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials WHERE id = $1`

	return p.scanCredential(querier.QueryRowContext(ctx, query, credentialID))
}

// GetByName retrieves a Credential by its unique name from the PostgreSQL database.
// Returns ErrCredentialNotFound if no credential uses the name.
func (p *PostgreSQLCredentialRepository) GetByName(ctx context.Context, name string) (*authDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials WHERE name = $1`

	return p.scanCredential(querier.QueryRowContext(ctx, query, name))
}

// GetByTokenHash retrieves a Credential by its token hash from the PostgreSQL
// database. This is the authentication lookup. Returns ErrCredentialNotFound
// if no credential matches the hash.
func (p *PostgreSQLCredentialRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials WHERE token_hash = $1`

	return p.scanCredential(querier.QueryRowContext(ctx, query, tokenHash))
}

// List retrieves credentials ordered by ID descending (newest first) with pagination.
// Returns empty slice if no credentials are found.
func (p *PostgreSQLCredentialRepository) List(ctx context.Context, offset, limit int) ([]*authDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`

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
		var capabilitiesJSON []byte

		err := rows.Scan(
			&credential.ID,
			&credential.UserID,
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
func (p *PostgreSQLCredentialRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count credentials")
	}
	return count, nil
}

// TouchLastUsed updates the credential's last-used timestamp.
func (p *PostgreSQLCredentialRepository) TouchLastUsed(ctx context.Context, credentialID uuid.UUID, usedAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET last_used_at = $1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, usedAt, credentialID)
	if err != nil {
		return apperrors.Wrap(err, "failed to touch credential last used")
	}
	return nil
}

// scanCredential scans a single credential row, translating sql.ErrNoRows into
// ErrCredentialNotFound.
func (p *PostgreSQLCredentialRepository) scanCredential(row *sql.Row) (*authDomain.Credential, error) {
	var credential authDomain.Credential
	var capabilitiesJSON []byte

	err := row.Scan(
		&credential.ID,
		&credential.UserID,
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

	if err := json.Unmarshal(capabilitiesJSON, &credential.Capabilities); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential capabilities")
	}

	return &credential, nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL Credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
