package dispatcher

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
	auditUseCase "github.com/actiongate/actiongate/internal/audit/usecase"
)

type mockEntryUseCase struct {
	mock.Mock
}

func (m *mockEntryUseCase) Record(ctx context.Context, recordInput *auditUseCase.RecordInput) error {
	args := m.Called(ctx, recordInput)
	return args.Error(0)
}

func (m *mockEntryUseCase) List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.Entry, int64, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*auditDomain.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *mockEntryUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEntryUseCase) VerifyBatch(ctx context.Context, startTime, endTime time.Time) (*auditUseCase.VerificationReport, error) {
	args := m.Called(ctx, startTime, endTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditUseCase.VerificationReport), args.Error(1)
}

func TestDispatcherWithAudit_Dispatch(t *testing.T) {
	t.Run("Success_RecordsSuccessOutcome", func(t *testing.T) {
		credential := testCredential()
		request := testRequest(credential, `{"action_type": "system.ping"}`)
		request.StartedAt = time.Now().Add(-50 * time.Millisecond)
		inner := &Result{HTTPStatus: http.StatusOK, ActionType: "system.ping"}

		mockNext := new(mockDispatcher)
		mockNext.On("Dispatch", mock.Anything, request).Return(inner)
		mockAudit := new(mockEntryUseCase)
		mockAudit.On("Record", mock.Anything, mock.MatchedBy(func(recordInput *auditUseCase.RecordInput) bool {
			return recordInput.RequestID == "req-123" &&
				recordInput.CredentialID != nil &&
				*recordInput.CredentialID == credential.ID &&
				recordInput.ActionType == "system.ping" &&
				recordInput.Outcome == auditDomain.OutcomeSuccess &&
				recordInput.DurationMS >= 50 &&
				recordInput.Metadata == nil
		})).Return(nil)

		dispatcher := NewDispatcherWithAudit(mockNext, mockAudit, testLogger())
		result := dispatcher.Dispatch(context.Background(), request)

		assert.Same(t, inner, result)
		mockAudit.AssertExpectations(t)
	})

	t.Run("Success_RecordsFailureOutcomeWithMetadata", func(t *testing.T) {
		credential := testCredential()
		request := testRequest(credential, `{"action_type": "credentials.create"}`)
		metadata := map[string]any{"missing_capabilities": []string{"admin"}}
		inner := &Result{
			HTTPStatus: http.StatusForbidden,
			ActionType: "credentials.create",
			ErrorCode:  "FORBIDDEN",
			Metadata:   metadata,
		}

		mockNext := new(mockDispatcher)
		mockNext.On("Dispatch", mock.Anything, request).Return(inner)
		mockAudit := new(mockEntryUseCase)
		mockAudit.On("Record", mock.Anything, mock.MatchedBy(func(recordInput *auditUseCase.RecordInput) bool {
			return recordInput.Outcome == auditDomain.Outcome("forbidden") &&
				recordInput.ActionType == "credentials.create" &&
				assert.ObjectsAreEqual(metadata, recordInput.Metadata)
		})).Return(nil)

		dispatcher := NewDispatcherWithAudit(mockNext, mockAudit, testLogger())
		dispatcher.Dispatch(context.Background(), request)

		mockAudit.AssertExpectations(t)
	})

	t.Run("Success_NilCredentialRecordedWithoutID", func(t *testing.T) {
		request := testRequest(nil, `{"action_type": "system.ping"}`)
		inner := &Result{HTTPStatus: http.StatusUnauthorized, ActionType: "system.ping", ErrorCode: "UNAUTHORIZED"}

		mockNext := new(mockDispatcher)
		mockNext.On("Dispatch", mock.Anything, request).Return(inner)
		mockAudit := new(mockEntryUseCase)
		mockAudit.On("Record", mock.Anything, mock.MatchedBy(func(recordInput *auditUseCase.RecordInput) bool {
			return recordInput.CredentialID == nil &&
				recordInput.Outcome == auditDomain.Outcome("unauthorized")
		})).Return(nil)

		dispatcher := NewDispatcherWithAudit(mockNext, mockAudit, testLogger())
		dispatcher.Dispatch(context.Background(), request)

		mockAudit.AssertExpectations(t)
	})

	t.Run("Success_RecordsEvenWhenContextCanceled", func(t *testing.T) {
		request := testRequest(testCredential(), `{"action_type": "system.ping"}`)
		inner := &Result{HTTPStatus: http.StatusOK, ActionType: "system.ping"}

		mockNext := new(mockDispatcher)
		mockNext.On("Dispatch", mock.Anything, request).Return(inner)
		mockAudit := new(mockEntryUseCase)
		mockAudit.On("Record", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), mock.Anything).Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dispatcher := NewDispatcherWithAudit(mockNext, mockAudit, testLogger())
		dispatcher.Dispatch(ctx, request)

		mockAudit.AssertExpectations(t)
	})

	t.Run("Success_ResultUnchangedWhenRecordFails", func(t *testing.T) {
		request := testRequest(testCredential(), `{"action_type": "system.ping"}`)
		inner := &Result{HTTPStatus: http.StatusOK, ActionType: "system.ping"}

		mockNext := new(mockDispatcher)
		mockNext.On("Dispatch", mock.Anything, request).Return(inner)
		mockAudit := new(mockEntryUseCase)
		mockAudit.On("Record", mock.Anything, mock.Anything).Return(errors.New("audit store down"))

		dispatcher := NewDispatcherWithAudit(mockNext, mockAudit, testLogger())
		result := dispatcher.Dispatch(context.Background(), request)

		assert.Same(t, inner, result)
	})
}
