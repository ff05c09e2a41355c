package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "paylog/internal/errors"
	"paylog/internal/gateway"
	"paylog/internal/lock"
	"paylog/internal/model"
)

const testTimeout = 5 * time.Second

func failedRecord(id uuid.UUID) *model.IntegrationLog {
	return &model.IntegrationLog{
		ID:             id,
		HandlerRef:     "payzen",
		RequestPayload: `{"orderStatus":"PAID"}`,
		Status:         model.LogStatusError,
		Message:        "payment not confirmed: UNPAID",
	}
}

func TestRetryService_Retry_Succeeds(t *testing.T) {
	id := uuid.New()
	repo := new(MockIntegrationLogRepository)
	adapter := NewMockAdapter("payzen")

	repo.On("FindByID", mock.Anything, id).Return(failedRecord(id), nil)
	repo.On("UpdateStatus", mock.Anything, id, model.LogStatusQueued, "", "").Return(nil)
	adapter.On("Process", mock.Anything, []byte(`{"orderStatus":"PAID"}`)).
		Return(gateway.Outcome{Status: gateway.OutcomeCompleted, Response: []byte(`{"orderStatus":"PAID"}`), Message: "payment confirmed"}, nil)
	repo.On("UpdateStatus", mock.Anything, id, model.LogStatusSuccess, `{"orderStatus":"PAID"}`, "payment confirmed").Return(nil)

	svc := NewRetryService(repo, gateway.NewRegistry(adapter), lock.NewMemoryLocker(), testTimeout)

	assert.NoError(t, svc.Retry(context.Background(), id))
	repo.AssertExpectations(t)
	adapter.AssertExpectations(t)
}

func TestRetryService_Retry_AdapterReportsError(t *testing.T) {
	id := uuid.New()
	repo := new(MockIntegrationLogRepository)
	adapter := NewMockAdapter("payzen")

	repo.On("FindByID", mock.Anything, id).Return(failedRecord(id), nil)
	repo.On("UpdateStatus", mock.Anything, id, model.LogStatusQueued, "", "").Return(nil)
	adapter.On("Process", mock.Anything, mock.Anything).
		Return(gateway.Outcome{Status: gateway.OutcomeError, Response: []byte(`{"orderStatus":"UNPAID"}`), Message: "payment not confirmed: UNPAID"}, nil)
	repo.On("UpdateStatus", mock.Anything, id, model.LogStatusError, `{"orderStatus":"UNPAID"}`, "payment not confirmed: UNPAID").Return(nil)

	svc := NewRetryService(repo, gateway.NewRegistry(adapter), lock.NewMemoryLocker(), testTimeout)

	err := svc.Retry(context.Background(), id)
	var gerr *apperrors.GatewayError
	assert.ErrorAs(t, err, &gerr)
	repo.AssertExpectations(t)
}

func TestRetryService_Retry_InvalidState(t *testing.T) {
	tests := []struct {
		name   string
		record *model.IntegrationLog
	}{
		{
			name: "success is terminal",
			record: &model.IntegrationLog{
				HandlerRef:     "payzen",
				RequestPayload: `{}`,
				Status:         model.LogStatusSuccess,
			},
		},
		{
			name: "queued is not retryable",
			record: &model.IntegrationLog{
				HandlerRef:     "payzen",
				RequestPayload: `{}`,
				Status:         model.LogStatusQueued,
			},
		},
		{
			name: "error without payload cannot be replayed",
			record: &model.IntegrationLog{
				HandlerRef: "payzen",
				Status:     model.LogStatusError,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			tt.record.ID = id
			repo := new(MockIntegrationLogRepository)
			repo.On("FindByID", mock.Anything, id).Return(tt.record, nil)

			svc := NewRetryService(repo, gateway.NewRegistry(NewMockAdapter("payzen")), lock.NewMemoryLocker(), testTimeout)

			err := svc.Retry(context.Background(), id)
			assert.ErrorIs(t, err, apperrors.ErrInvalidState)
			// No status write may have happened.
			repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRetryService_Retry_AlreadyInProgress(t *testing.T) {
	id := uuid.New()
	repo := new(MockIntegrationLogRepository)
	locker := lock.NewMemoryLocker()

	// Simulate another retry holding the record's exclusion token.
	ok, err := locker.TryAcquire(context.Background(), "ilog:"+id.String())
	assert.NoError(t, err)
	assert.True(t, ok)

	svc := NewRetryService(repo, gateway.NewRegistry(NewMockAdapter("payzen")), locker, testTimeout)

	assert.ErrorIs(t, svc.Retry(context.Background(), id), apperrors.ErrRetryInProgress)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestRetryService_Retry_ReleasesLockOnFailure(t *testing.T) {
	id := uuid.New()
	repo := new(MockIntegrationLogRepository)
	repo.On("FindByID", mock.Anything, id).Return(nil, apperrors.ErrLogNotFound)

	locker := lock.NewMemoryLocker()
	svc := NewRetryService(repo, gateway.NewRegistry(NewMockAdapter("payzen")), locker, testTimeout)

	assert.ErrorIs(t, svc.Retry(context.Background(), id), apperrors.ErrLogNotFound)

	// The exclusion token must be free again.
	ok, err := locker.TryAcquire(context.Background(), "ilog:"+id.String())
	assert.NoError(t, err)
	assert.True(t, ok)
}

// Queued -> Error -> retry with the gateway now confirming -> Success,
// after which a second retry is rejected.
func TestRetryService_Retry_ErrorThenSuccessThenTerminal(t *testing.T) {
	id := uuid.New()
	repo := new(MockIntegrationLogRepository)
	adapter := NewMockAdapter("payzen")

	repo.On("FindByID", mock.Anything, id).Return(failedRecord(id), nil).Once()
	repo.On("UpdateStatus", mock.Anything, id, model.LogStatusQueued, "", "").Return(nil).Once()
	adapter.On("Process", mock.Anything, mock.Anything).
		Return(gateway.Outcome{Status: gateway.OutcomeCompleted, Response: []byte(`{"orderStatus":"PAID"}`), Message: "payment confirmed"}, nil).Once()
	repo.On("UpdateStatus", mock.Anything, id, model.LogStatusSuccess, `{"orderStatus":"PAID"}`, "payment confirmed").Return(nil).Once()

	svc := NewRetryService(repo, gateway.NewRegistry(adapter), lock.NewMemoryLocker(), testTimeout)
	assert.NoError(t, svc.Retry(context.Background(), id))

	settled := failedRecord(id)
	settled.Status = model.LogStatusSuccess
	repo.On("FindByID", mock.Anything, id).Return(settled, nil).Once()

	assert.ErrorIs(t, svc.Retry(context.Background(), id), apperrors.ErrInvalidState)
	repo.AssertExpectations(t)
}

func TestRetryService_BulkRetry_PartialSuccess(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	repo := new(MockIntegrationLogRepository)
	adapter := NewMockAdapter("payzen")

	// a: error record whose replay fails again.
	recA := failedRecord(a)
	recA.RequestPayload = `{"attempt":"a"}`
	repo.On("FindByID", mock.Anything, a).Return(recA, nil)
	adapter.On("Process", mock.Anything, []byte(`{"attempt":"a"}`)).
		Return(gateway.Outcome{Status: gateway.OutcomeError, Response: []byte(`{}`), Message: "declined"}, nil)
	repo.On("UpdateStatus", mock.Anything, a, model.LogStatusQueued, "", "").Return(nil)
	repo.On("UpdateStatus", mock.Anything, a, model.LogStatusError, `{}`, "declined").Return(nil)

	// b: already succeeded, must be skipped untouched.
	recB := &model.IntegrationLog{ID: b, HandlerRef: "payzen", RequestPayload: `{}`, Status: model.LogStatusSuccess}
	repo.On("FindByID", mock.Anything, b).Return(recB, nil)

	// c: error record whose replay now succeeds.
	recC := failedRecord(c)
	recC.RequestPayload = `{"attempt":"c"}`
	repo.On("FindByID", mock.Anything, c).Return(recC, nil)
	adapter.On("Process", mock.Anything, []byte(`{"attempt":"c"}`)).
		Return(gateway.Outcome{Status: gateway.OutcomeCompleted, Response: []byte(`{}`), Message: "payment confirmed"}, nil)
	repo.On("UpdateStatus", mock.Anything, c, model.LogStatusQueued, "", "").Return(nil)
	repo.On("UpdateStatus", mock.Anything, c, model.LogStatusSuccess, `{}`, "payment confirmed").Return(nil)

	svc := NewRetryService(repo, gateway.NewRegistry(adapter), lock.NewMemoryLocker(), testTimeout)

	results := svc.BulkRetry(context.Background(), []uuid.UUID{a, b, c})

	assert.Len(t, results, 3)
	byID := map[uuid.UUID]RetryResult{}
	for _, r := range results {
		byID[r.ID] = r
	}
	// a's failure did not prevent c from being attempted.
	assert.Equal(t, RetryOutcomeFailed, byID[a].Outcome)
	assert.Equal(t, RetryOutcomeSkipped, byID[b].Outcome)
	assert.Equal(t, RetryOutcomeRetried, byID[c].Outcome)
	// b was never written.
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, b, mock.Anything, mock.Anything, mock.Anything)
}

func TestRetryService_Resync(t *testing.T) {
	id := uuid.New()

	t.Run("handler mismatch is rejected", func(t *testing.T) {
		repo := new(MockIntegrationLogRepository)
		repo.On("FindByID", mock.Anything, id).Return(failedRecord(id), nil)
		svc := NewRetryService(repo, gateway.NewRegistry(NewMockAdapter("payzen")), lock.NewMemoryLocker(), testTimeout)

		err := svc.Resync(context.Background(), "stripe", id, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("payload mismatch is rejected", func(t *testing.T) {
		repo := new(MockIntegrationLogRepository)
		repo.On("FindByID", mock.Anything, id).Return(failedRecord(id), nil)
		svc := NewRetryService(repo, gateway.NewRegistry(NewMockAdapter("payzen")), lock.NewMemoryLocker(), testTimeout)

		err := svc.Resync(context.Background(), "payzen", id, `{"different":"payload"}`)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("matching payload replays", func(t *testing.T) {
		repo := new(MockIntegrationLogRepository)
		adapter := NewMockAdapter("payzen")
		repo.On("FindByID", mock.Anything, id).Return(failedRecord(id), nil)
		repo.On("UpdateStatus", mock.Anything, id, model.LogStatusQueued, "", "").Return(nil)
		adapter.On("Process", mock.Anything, mock.Anything).
			Return(gateway.Outcome{Status: gateway.OutcomeCompleted, Response: []byte(`{}`), Message: "payment confirmed"}, nil)
		repo.On("UpdateStatus", mock.Anything, id, model.LogStatusSuccess, `{}`, "payment confirmed").Return(nil)

		svc := NewRetryService(repo, gateway.NewRegistry(adapter), lock.NewMemoryLocker(), testTimeout)
		assert.NoError(t, svc.Resync(context.Background(), "payzen", id, `{"orderStatus":"PAID"}`))
	})
}
