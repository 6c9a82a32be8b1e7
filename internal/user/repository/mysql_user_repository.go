package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/actiongate/actiongate/internal/database"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	userDomain "github.com/actiongate/actiongate/internal/user/domain"
)

// MySQLUserRepository implements User persistence for MySQL.
// Stores UUIDs as BINARY(16) with transaction support via database.GetTx().
type MySQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User into the MySQL database.
// Returns ErrUserEmailTaken when the email address is already registered.
func (m *MySQLUserRepository) Create(ctx context.Context, user *userDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user ID")
	}

	query := `INSERT INTO users (id, name, email, password, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return userDomain.ErrUserEmailTaken
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update modifies an existing User in the MySQL database.
// Returns ErrUserEmailTaken when the new email address collides with another
// account.
func (m *MySQLUserRepository) Update(ctx context.Context, user *userDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user ID")
	}

	query := `UPDATE users
			  SET name = ?,
				  email = ?,
				  password = ?,
				  updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.UpdatedAt,
		idBytes,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return userDomain.ErrUserEmailTaken
		}
		return apperrors.Wrap(err, "failed to update user")
	}
	return nil
}

// Get retrieves a User by ID from the MySQL database.
// Returns ErrUserNotFound if the user doesn't exist.
func (m *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user ID")
	}

	query := `SELECT id, name, email, password, created_at, updated_at
			  FROM users WHERE id = ?`

	return m.scanUser(querier.QueryRowContext(ctx, query, idBytes))
}

// GetByEmail retrieves a User by email from the MySQL database.
// Returns ErrUserNotFound if no account uses the email address.
func (m *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, email, password, created_at, updated_at
			  FROM users WHERE email = ?`

	return m.scanUser(querier.QueryRowContext(ctx, query, email))
}

// scanUser scans a single user row, converting the BINARY(16) ID back to a
// UUID and translating sql.ErrNoRows into ErrUserNotFound.
func (m *MySQLUserRepository) scanUser(row *sql.Row) (*userDomain.User, error) {
	var user userDomain.User
	var idBytes []byte

	err := row.Scan(
		&idBytes,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user ID")
	}

	return &user, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint
// violation (error 1062).
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "error 1062") || strings.Contains(errMsg, "duplicate entry")
}

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
