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

	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
)

var entryColumns = []string{
	"id", "request_id", "credential_id", "action_type", "outcome",
	"duration_ms", "metadata", "signature", "created_at",
}

func TestNewPostgreSQLEntryRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewPostgreSQLEntryRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLEntryRepository{}, repo)
}

func TestPostgreSQLEntryRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewPostgreSQLEntryRepository(db)

	credentialID := uuid.Must(uuid.NewV7())
	entry := &auditDomain.Entry{
		ID:           uuid.Must(uuid.NewV7()),
		RequestID:    "req-123",
		CredentialID: &credentialID,
		ActionType:   "credentials.create",
		Outcome:      auditDomain.OutcomeSuccess,
		DurationMS:   12,
		Metadata:     map[string]any{"capability": "admin"},
		Signature:    make([]byte, 32),
		CreatedAt:    time.Now().UTC(),
	}

	metadataJSON, err := json.Marshal(entry.Metadata)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO audit_entries").
		WithArgs(
			entry.ID,
			entry.RequestID,
			entry.CredentialID,
			entry.ActionType,
			"success",
			entry.DurationMS,
			metadataJSON,
			entry.Signature,
			entry.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(ctx, entry)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEntryRepository_Create_NilOptionals(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewPostgreSQLEntryRepository(db)

	// Unauthenticated failure: no credential, no metadata, unsigned
	entry := &auditDomain.Entry{
		ID:         uuid.Must(uuid.NewV7()),
		RequestID:  "req-456",
		ActionType: "credentials.create",
		Outcome:    auditDomain.FailureOutcome("UNAUTHORIZED"),
		DurationMS: 1,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO audit_entries").
		WithArgs(
			entry.ID,
			entry.RequestID,
			nil,
			entry.ActionType,
			"unauthorized",
			entry.DurationMS,
			nil,
			nil,
			entry.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(ctx, entry)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEntryRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewPostgreSQLEntryRepository(db)

	entryID := uuid.Must(uuid.NewV7())
	credentialID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	rows := sqlmock.NewRows(entryColumns).AddRow(
		entryID.String(), "req-123", credentialID.String(), "system.ping",
		"success", int64(3), []byte(`{"capability":"read"}`), make([]byte, 32), now,
	)

	mock.ExpectQuery("SELECT (.+) FROM audit_entries ORDER BY created_at DESC").
		WithArgs(10, 0).
		WillReturnRows(rows)

	entries, err := repo.List(ctx, 0, 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, entryID, entries[0].ID)
	assert.Equal(t, "req-123", entries[0].RequestID)
	require.NotNil(t, entries[0].CredentialID)
	assert.Equal(t, credentialID, *entries[0].CredentialID)
	assert.Equal(t, auditDomain.OutcomeSuccess, entries[0].Outcome)
	assert.Equal(t, int64(3), entries[0].DurationMS)
	assert.Equal(t, map[string]any{"capability": "read"}, entries[0].Metadata)
	assert.True(t, entries[0].IsSigned())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEntryRepository_List_TimeFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewPostgreSQLEntryRepository(db)

	from := time.Now().UTC().Add(-24 * time.Hour)
	to := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM audit_entries WHERE created_at >= (.+) AND created_at <= (.+) ORDER BY created_at DESC`).
		WithArgs(from, to, 10, 0).
		WillReturnRows(sqlmock.NewRows(entryColumns))

	entries, err := repo.List(ctx, 0, 10, &from, &to)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEntryRepository_List_NullOptionals(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewPostgreSQLEntryRepository(db)

	entryID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	rows := sqlmock.NewRows(entryColumns).AddRow(
		entryID.String(), "req-789", nil, "credentials.create",
		"unauthorized", int64(1), nil, nil, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM audit_entries ORDER BY created_at DESC").
		WithArgs(10, 0).
		WillReturnRows(rows)

	entries, err := repo.List(ctx, 0, 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Nil(t, entries[0].CredentialID)
	assert.Nil(t, entries[0].Metadata)
	assert.False(t, entries[0].IsSigned())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEntryRepository_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewPostgreSQLEntryRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(9)))

	count, err := repo.Count(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEntryRepository_Count_TimeFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewPostgreSQLEntryRepository(db)

	from := time.Now().UTC().Add(-time.Hour)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_entries WHERE created_at >=`).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	count, err := repo.Count(ctx, &from, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEntryRepository_DeleteOlderThan_DryRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewPostgreSQLEntryRepository(db)

	olderThan := time.Now().UTC().Add(-30 * 24 * time.Hour)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_entries WHERE created_at <`).
		WithArgs(olderThan).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(15)))

	count, err := repo.DeleteOlderThan(ctx, olderThan, true)
	require.NoError(t, err)
	assert.Equal(t, int64(15), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEntryRepository_DeleteOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	repo := NewPostgreSQLEntryRepository(db)

	olderThan := time.Now().UTC().Add(-30 * 24 * time.Hour)

	mock.ExpectExec("DELETE FROM audit_entries WHERE created_at <").
		WithArgs(olderThan).
		WillReturnResult(sqlmock.NewResult(0, 15))

	count, err := repo.DeleteOlderThan(ctx, olderThan, false)
	require.NoError(t, err)
	assert.Equal(t, int64(15), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
