package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userDomain "github.com/actiongate/actiongate/internal/user/domain"
)

func TestNewMySQLUserRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewMySQLUserRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &MySQLUserRepository{}, repo)
}

func TestMySQLUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLUserRepository(db)

	now := time.Now().UTC()
	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         "Jamie Rivers",
		Email:        "jamie@example.com",
		PasswordHash: "$argon2id$stored-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// UUIDs are stored as BINARY(16)
	idBytes, err := user.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			idBytes,
			user.Name,
			user.Email,
			user.PasswordHash,
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(ctx, user)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLUserRepository(db)

	now := time.Now().UTC()
	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         "Jamie Rivers",
		Email:        "jamie@example.com",
		PasswordHash: "$argon2id$stored-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&testError{"Error 1062 (23000): Duplicate entry 'jamie@example.com' for key 'users.email'"})

	err = repo.Create(ctx, user)
	require.Error(t, err)
	assert.ErrorIs(t, err, userDomain.ErrUserEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLUserRepository(db)

	userID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	idBytes, err := userID.MarshalBinary()
	require.NoError(t, err)

	rows := sqlmock.NewRows(userColumns).AddRow(
		idBytes, "Jamie Rivers", "jamie@example.com", "$argon2id$stored-hash", now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(idBytes).
		WillReturnRows(rows)

	user, err := repo.Get(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "Jamie Rivers", user.Name)
	assert.Equal(t, "jamie@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLUserRepository(db)
	userID := uuid.Must(uuid.NewV7())

	idBytes, err := userID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(idBytes).
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.Get(ctx, userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, userDomain.ErrUserNotFound)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLUserRepository(db)

	userID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	idBytes, err := userID.MarshalBinary()
	require.NoError(t, err)

	rows := sqlmock.NewRows(userColumns).AddRow(
		idBytes, "Jamie Rivers", "jamie@example.com", "$argon2id$stored-hash", now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("jamie@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(ctx, "jamie@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLUserRepository(db)

	now := time.Now().UTC()
	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         "Jamie Q. Rivers",
		Email:        "jamie.q@example.com",
		PasswordHash: "$argon2id$new-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	idBytes, err := user.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec("UPDATE users").
		WithArgs(
			user.Name,
			user.Email,
			user.PasswordHash,
			user.UpdatedAt,
			idBytes,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(ctx, user)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsMySQLUniqueViolation(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil_error", nil, false},
		{"unrelated_error", assert.AnError, false},
		{
			"error_1062",
			&testError{"Error 1062 (23000): Duplicate entry 'x' for key 'users.email'"},
			true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, isMySQLUniqueViolation(tc.err))
		})
	}
}
