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

// MySQLCredentialRepository implements Credential persistence for MySQL.
// Stores UUIDs as BINARY(16) with transaction support via database.GetTx().
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new Credential into the MySQL database.
// Converts UUIDs to binary format for storage. Returns an error if UUID
// conversion, capability marshaling, or database insertion fails.
func (m *MySQLCredentialRepository) Create(ctx context.Context, credential *authDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential ID")
	}

	userIDBytes, err := credential.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user ID")
	}

	capabilitiesJSON, err := json.Marshal(credential.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential capabilities")
	}

	query := `INSERT INTO credentials (id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		userIDBytes,
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

// Update modifies an existing Credential in the MySQL database.
// The token hash is immutable and never touched by updates.
func (m *MySQLCredentialRepository) Update(ctx context.Context, credential *authDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential ID")
	}

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
		idBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}

	return nil
}

// Get retrieves a Credential by ID from the MySQL database.
// Returns ErrCredentialNotFound if the credential doesn't exist.
func (m *MySQLCredentialRepository) Get(ctx context.Context, credentialID uuid.UUID) (*authDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := credentialID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential ID")
	}

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials WHERE id = ?`

	return m.scanCredential(querier.QueryRowContext(ctx, query, idBytes))
}

// GetByName retrieves a Credential by its unique name from the MySQL database.
// Returns ErrCredentialNotFound if no credential uses the name.
func (m *MySQLCredentialRepository) GetByName(ctx context.Context, name string) (*authDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials WHERE name = ?`

	return m.scanCredential(querier.QueryRowContext(ctx, query, name))
}

// GetByTokenHash retrieves a Credential by its token hash from the MySQL
// database. This is the authentication lookup. Returns ErrCredentialNotFound
// if no credential matches the hash.
func (m *MySQLCredentialRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, token_hash, name, capabilities, is_active, expires_at, last_used_at, created_at, updated_at
			  FROM credentials WHERE token_hash = ?`

	return m.scanCredential(querier.QueryRowContext(ctx, query, tokenHash))
}

// List retrieves credentials ordered by ID descending (newest first) with pagination.
// Returns empty slice if no credentials are found.
func (m *MySQLCredentialRepository) List(ctx context.Context, offset, limit int) ([]*authDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

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
		var idBytes, userIDBytes, capabilitiesJSON []byte

		err := rows.Scan(
			&idBytes,
			&userIDBytes,
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

		if err := credential.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal credential ID")
		}

		if err := credential.UserID.UnmarshalBinary(userIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user ID")
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
func (m *MySQLCredentialRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count credentials")
	}
	return count, nil
}

// TouchLastUsed updates the credential's last-used timestamp.
func (m *MySQLCredentialRepository) TouchLastUsed(ctx context.Context, credentialID uuid.UUID, usedAt time.Time) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := credentialID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential ID")
	}

	query := `UPDATE credentials SET last_used_at = ? WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, usedAt, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to touch credential last used")
	}
	return nil
}

// scanCredential scans a single credential row, translating sql.ErrNoRows into
// ErrCredentialNotFound.
func (m *MySQLCredentialRepository) scanCredential(row *sql.Row) (*authDomain.Credential, error) {
	var credential authDomain.Credential
	var idBytes, userIDBytes, capabilitiesJSON []byte

	err := row.Scan(
		&idBytes,
		&userIDBytes,
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

	if err := credential.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential ID")
	}

	if err := credential.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user ID")
	}

	if err := json.Unmarshal(capabilitiesJSON, &credential.Capabilities); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential capabilities")
	}

	return &credential, nil
}

// NewMySQLCredentialRepository creates a new MySQL Credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
