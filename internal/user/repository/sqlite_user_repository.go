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

// SQLiteUserRepository implements User persistence for SQLite.
// Stores UUIDs as TEXT with transaction support via database.GetTx().
type SQLiteUserRepository struct {
	db *sql.DB
}

// Create inserts a new User into the SQLite database.
// Returns ErrUserEmailTaken when the email address is already registered.
func (s *SQLiteUserRepository) Create(ctx context.Context, user *userDomain.User) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO users (id, name, email, password, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID.String(),
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return userDomain.ErrUserEmailTaken
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update modifies an existing User in the SQLite database.
// Returns ErrUserEmailTaken when the new email address collides with another
// account.
func (s *SQLiteUserRepository) Update(ctx context.Context, user *userDomain.User) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE users
			  SET name = ?,
				  email = ?,
				  password = ?,
				  updated_at = ?
			  WHERE id = ?`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID.String(),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return userDomain.ErrUserEmailTaken
		}
		return apperrors.Wrap(err, "failed to update user")
	}
	return nil
}

// Get retrieves a User by ID from the SQLite database.
// Returns ErrUserNotFound if the user doesn't exist.
func (s *SQLiteUserRepository) Get(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, name, email, password, created_at, updated_at
			  FROM users WHERE id = ?`

	return s.scanUser(querier.QueryRowContext(ctx, query, userID.String()))
}

// GetByEmail retrieves a User by email from the SQLite database.
// Returns ErrUserNotFound if no account uses the email address.
func (s *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, name, email, password, created_at, updated_at
			  FROM users WHERE email = ?`

	return s.scanUser(querier.QueryRowContext(ctx, query, email))
}

// scanUser scans a single user row, translating sql.ErrNoRows into
// ErrUserNotFound.
func (s *SQLiteUserRepository) scanUser(row *sql.Row) (*userDomain.User, error) {
	var user userDomain.User
	var idStr string

	err := row.Scan(
		&idStr,
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

	if user.ID, err = uuid.Parse(idStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse user ID")
	}

	return &user, nil
}

// isSQLiteUniqueViolation checks if the error is a SQLite unique constraint
// violation.
func isSQLiteUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// NewSQLiteUserRepository creates a new SQLite User repository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}
