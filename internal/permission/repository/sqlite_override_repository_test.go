package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
	"github.com/actiongate/actiongate/internal/testutil"
)

func newTestOverride(actionType string) *permissionDomain.Override {
	now := time.Now().UTC()
	return &permissionDomain.Override{
		ID:           uuid.Must(uuid.NewV7()),
		ActionType:   actionType,
		Capabilities: []authDomain.Capability{authDomain.AdminCapability},
		IsActive:     true,
		Description:  "restricted to operators",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestNewSQLiteOverrideRepository(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteOverrideRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &SQLiteOverrideRepository{}, repo)
}

func TestSQLiteOverrideRepository_Create(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	override := newTestOverride("credentials.revoke")
	err := repo.Create(ctx, override)
	require.NoError(t, err)

	retrieved, err := repo.GetByActionType(ctx, "credentials.revoke")
	require.NoError(t, err)

	assert.Equal(t, override.ID, retrieved.ID)
	assert.Equal(t, override.ActionType, retrieved.ActionType)
	assert.Equal(t, override.Capabilities, retrieved.Capabilities)
	assert.Equal(t, override.IsActive, retrieved.IsActive)
	assert.Equal(t, override.Description, retrieved.Description)
	assert.WithinDuration(t, override.CreatedAt, retrieved.CreatedAt, time.Second)
	assert.WithinDuration(t, override.UpdatedAt, retrieved.UpdatedAt, time.Second)
}

func TestSQLiteOverrideRepository_Create_DuplicateActionType(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	first := newTestOverride("credentials.revoke")
	require.NoError(t, repo.Create(ctx, first))

	second := newTestOverride("credentials.revoke")
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create permission override")
}

func TestSQLiteOverrideRepository_Create_EmptyCapabilities(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	override := newTestOverride("system.ping")
	override.Capabilities = []authDomain.Capability{}
	require.NoError(t, repo.Create(ctx, override))

	retrieved, err := repo.GetByActionType(ctx, "system.ping")
	require.NoError(t, err)
	assert.Empty(t, retrieved.Capabilities)
}

func TestSQLiteOverrideRepository_GetByActionType_NotFound(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	_, err := repo.GetByActionType(ctx, "system.ping")
	assert.ErrorIs(t, err, permissionDomain.ErrOverrideNotFound)
}

func TestSQLiteOverrideRepository_Update(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	override := newTestOverride("credentials.revoke")
	require.NoError(t, repo.Create(ctx, override))

	override.Capabilities = []authDomain.Capability{authDomain.AdminCapability, authDomain.DeleteCapability}
	override.IsActive = false
	override.Description = "suspended while rotating tokens"
	override.UpdatedAt = time.Now().UTC().Add(time.Minute)
	require.NoError(t, repo.Update(ctx, override))

	retrieved, err := repo.GetByActionType(ctx, "credentials.revoke")
	require.NoError(t, err)
	assert.Equal(t, override.Capabilities, retrieved.Capabilities)
	assert.False(t, retrieved.IsActive)
	assert.Equal(t, "suspended while rotating tokens", retrieved.Description)
	assert.WithinDuration(t, override.UpdatedAt, retrieved.UpdatedAt, time.Second)
}

func TestSQLiteOverrideRepository_Delete(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	override := newTestOverride("credentials.revoke")
	require.NoError(t, repo.Create(ctx, override))

	require.NoError(t, repo.Delete(ctx, "credentials.revoke"))

	_, err := repo.GetByActionType(ctx, "credentials.revoke")
	assert.ErrorIs(t, err, permissionDomain.ErrOverrideNotFound)
}

func TestSQLiteOverrideRepository_Delete_NotFound(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	err := repo.Delete(ctx, "system.ping")
	assert.ErrorIs(t, err, permissionDomain.ErrOverrideNotFound)
}

func TestSQLiteOverrideRepository_List(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	require.NoError(t, repo.Create(ctx, newTestOverride("credentials.revoke")))
	require.NoError(t, repo.Create(ctx, newTestOverride("audit.list")))
	require.NoError(t, repo.Create(ctx, newTestOverride("system.info")))

	overrides, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, overrides, 3)

	// Ordered by action type for stable pagination
	assert.Equal(t, "audit.list", overrides[0].ActionType)
	assert.Equal(t, "credentials.revoke", overrides[1].ActionType)
	assert.Equal(t, "system.info", overrides[2].ActionType)
}

func TestSQLiteOverrideRepository_List_Pagination(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	require.NoError(t, repo.Create(ctx, newTestOverride("audit.list")))
	require.NoError(t, repo.Create(ctx, newTestOverride("credentials.revoke")))
	require.NoError(t, repo.Create(ctx, newTestOverride("system.info")))

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "credentials.revoke", page[0].ActionType)
}

func TestSQLiteOverrideRepository_List_Empty(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	overrides, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, overrides)
	assert.Empty(t, overrides)
}

func TestSQLiteOverrideRepository_Count(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewSQLiteOverrideRepository(db)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.Create(ctx, newTestOverride("audit.list")))
	require.NoError(t, repo.Create(ctx, newTestOverride("system.info")))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
