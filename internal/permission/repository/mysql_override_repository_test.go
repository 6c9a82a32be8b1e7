package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
)

func TestNewMySQLOverrideRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewMySQLOverrideRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &MySQLOverrideRepository{}, repo)
}

func TestMySQLOverrideRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLOverrideRepository(db)

	now := time.Now().UTC()
	override := &permissionDomain.Override{
		ID:           uuid.Must(uuid.NewV7()),
		ActionType:   "credentials.revoke",
		Capabilities: []authDomain.Capability{authDomain.AdminCapability},
		IsActive:     true,
		Description:  "locked down during incident review",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	idBytes, err := override.ID.MarshalBinary()
	require.NoError(t, err)

	capabilitiesJSON, err := json.Marshal(override.Capabilities)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO permission_overrides").
		WithArgs(
			idBytes,
			override.ActionType,
			capabilitiesJSON,
			override.IsActive,
			override.Description,
			override.CreatedAt,
			override.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(ctx, override)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOverrideRepository_GetByActionType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLOverrideRepository(db)

	overrideID := uuid.Must(uuid.NewV7())
	idBytes, err := overrideID.MarshalBinary()
	require.NoError(t, err)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(overrideColumns).AddRow(
		idBytes, "audit.list", []byte(`["admin"]`), true,
		"restricted to operators", now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM permission_overrides WHERE action_type").
		WithArgs("audit.list").
		WillReturnRows(rows)

	override, err := repo.GetByActionType(ctx, "audit.list")
	require.NoError(t, err)

	assert.Equal(t, overrideID, override.ID)
	assert.Equal(t, "audit.list", override.ActionType)
	assert.Equal(t, []authDomain.Capability{authDomain.AdminCapability}, override.Capabilities)
	assert.True(t, override.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOverrideRepository_GetByActionType_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLOverrideRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM permission_overrides WHERE action_type").
		WithArgs("system.ping").
		WillReturnRows(sqlmock.NewRows(overrideColumns))

	_, err = repo.GetByActionType(ctx, "system.ping")
	assert.ErrorIs(t, err, permissionDomain.ErrOverrideNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOverrideRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLOverrideRepository(db)

	now := time.Now().UTC()
	override := &permissionDomain.Override{
		ID:           uuid.Must(uuid.NewV7()),
		ActionType:   "credentials.revoke",
		Capabilities: []authDomain.Capability{authDomain.AdminCapability, authDomain.DeleteCapability},
		IsActive:     false,
		Description:  "temporarily disabled",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	idBytes, err := override.ID.MarshalBinary()
	require.NoError(t, err)

	capabilitiesJSON, err := json.Marshal(override.Capabilities)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE permission_overrides").
		WithArgs(
			capabilitiesJSON,
			override.IsActive,
			override.Description,
			override.UpdatedAt,
			idBytes,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(ctx, override)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOverrideRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLOverrideRepository(db)

	mock.ExpectExec("DELETE FROM permission_overrides WHERE action_type").
		WithArgs("credentials.revoke").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "credentials.revoke")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOverrideRepository_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLOverrideRepository(db)

	mock.ExpectExec("DELETE FROM permission_overrides WHERE action_type").
		WithArgs("system.ping").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(ctx, "system.ping")
	assert.ErrorIs(t, err, permissionDomain.ErrOverrideNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOverrideRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLOverrideRepository(db)

	firstID := uuid.Must(uuid.NewV7())
	secondID := uuid.Must(uuid.NewV7())
	firstIDBytes, err := firstID.MarshalBinary()
	require.NoError(t, err)
	secondIDBytes, err := secondID.MarshalBinary()
	require.NoError(t, err)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(overrideColumns).
		AddRow(firstIDBytes, "audit.list", []byte(`["admin"]`), true, "", now, now).
		AddRow(secondIDBytes, "credentials.revoke", []byte(`["admin"]`), true, "", now, now)

	mock.ExpectQuery("SELECT (.+) FROM permission_overrides ORDER BY action_type ASC").
		WithArgs(10, 0).
		WillReturnRows(rows)

	overrides, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.Equal(t, firstID, overrides[0].ID)
	assert.Equal(t, "audit.list", overrides[0].ActionType)
	assert.Equal(t, secondID, overrides[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOverrideRepository_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewMySQLOverrideRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
