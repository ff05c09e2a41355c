package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "paylog/internal/errors"
	"paylog/internal/gateway"
	"paylog/internal/lock"
	"paylog/internal/model"
	"paylog/internal/repository"
)

// RetryOutcome classifies the per-id result of a bulk retry.
type RetryOutcome string

const (
	RetryOutcomeRetried RetryOutcome = "retried"
	RetryOutcomeFailed  RetryOutcome = "failed"
	RetryOutcomeSkipped RetryOutcome = "skipped"
)

// RetryResult is the per-id outcome of a bulk retry. Partial success
// is the expected common case; there is never an aggregate failure.
type RetryResult struct {
	ID      uuid.UUID    `json:"id"`
	Outcome RetryOutcome `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
}

// RetryService re-executes stored gateway interactions against their
// original adapter. At most one retry is in flight per record.
type RetryService interface {
	Retry(ctx context.Context, id uuid.UUID) error
	BulkRetry(ctx context.Context, ids []uuid.UUID) []RetryResult
	Resync(ctx context.Context, handlerRef string, id uuid.UUID, requestPayload string) error
	ListByStatus(ctx context.Context, status model.LogStatus) ([]model.IntegrationLog, error)
}

type retryService struct {
	logRepo  repository.IntegrationLogRepository
	registry *gateway.Registry
	locker   lock.Locker
	timeout  time.Duration
}

// NewRetryService creates a retry service.
func NewRetryService(
	logRepo repository.IntegrationLogRepository,
	registry *gateway.Registry,
	locker lock.Locker,
	timeout time.Duration,
) RetryService {
	return &retryService{
		logRepo:  logRepo,
		registry: registry,
		locker:   locker,
		timeout:  timeout,
	}
}

// Retry replays the stored request payload of a failed record through
// its original adapter and persists the new outcome. Only records in
// error state are eligible; a concurrent retry for the same id fails
// with ErrRetryInProgress rather than queueing.
func (s *retryService) Retry(ctx context.Context, id uuid.UUID) error {
	key := lockKeyLog(id)
	acquired, err := s.locker.TryAcquire(ctx, key)
	if err != nil {
		return err
	}
	if !acquired {
		return apperrors.ErrRetryInProgress
	}
	defer s.locker.Release(ctx, key)

	rec, err := s.logRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !rec.Retryable() {
		return apperrors.ErrInvalidState
	}

	adapter, err := s.registry.Resolve(rec.HandlerRef)
	if err != nil {
		return err
	}

	// Back to queued first, mirroring a fresh attempt.
	if err := s.logRepo.UpdateStatus(ctx, id, model.LogStatusQueued, "", ""); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := adapter.Process(callCtx, []byte(rec.RequestPayload))
	if err != nil {
		gerr := &apperrors.GatewayError{Handler: rec.HandlerRef, Err: err}
		if uerr := s.logRepo.UpdateStatus(ctx, id, model.LogStatusError, "", gerr.Error()); uerr != nil {
			return uerr
		}
		return gerr
	}

	switch outcome.Status {
	case gateway.OutcomeCompleted:
		return s.logRepo.UpdateStatus(ctx, id, model.LogStatusSuccess, string(outcome.Response), outcome.Message)
	case gateway.OutcomeRunning:
		// Still unsettled; stays queued for a later webhook or retry.
		return s.logRepo.UpdateStatus(ctx, id, model.LogStatusQueued, string(outcome.Response), outcome.Message)
	default:
		if err := s.logRepo.UpdateStatus(ctx, id, model.LogStatusError, string(outcome.Response), outcome.Message); err != nil {
			return err
		}
		return &apperrors.GatewayError{Handler: rec.HandlerRef, Err: errors.New(outcome.Message)}
	}
}

// BulkRetry applies Retry to each id independently and in parallel.
// One id's failure or held lock never blocks or aborts the others.
func (s *retryService) BulkRetry(ctx context.Context, ids []uuid.UUID) []RetryResult {
	results := make([]RetryResult, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			results[i] = s.retryOne(ctx, id)
		}(i, id)
	}
	wg.Wait()
	return results
}

func (s *retryService) retryOne(ctx context.Context, id uuid.UUID) RetryResult {
	err := s.Retry(ctx, id)
	switch {
	case err == nil:
		return RetryResult{ID: id, Outcome: RetryOutcomeRetried}
	case errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrLogNotFound),
		errors.Is(err, apperrors.ErrRetryInProgress):
		return RetryResult{ID: id, Outcome: RetryOutcomeSkipped, Reason: err.Error()}
	default:
		log.Warn().Err(err).Str("log_id", id.String()).Msg("bulk retry attempt failed")
		return RetryResult{ID: id, Outcome: RetryOutcomeFailed, Reason: err.Error()}
	}
}

// Resync is the operator-facing variant of Retry: it cross-checks the
// supplied handler and payload against what is stored before replaying,
// guarding against retrying a record under a stale assumption.
func (s *retryService) Resync(ctx context.Context, handlerRef string, id uuid.UUID, requestPayload string) error {
	rec, err := s.logRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.HandlerRef != handlerRef {
		return apperrors.ErrInvalidState
	}
	if requestPayload != "" && requestPayload != rec.RequestPayload {
		return apperrors.ErrInvalidState
	}
	return s.Retry(ctx, id)
}

// ListByStatus exposes the store's status listing to operators.
func (s *retryService) ListByStatus(ctx context.Context, status model.LogStatus) ([]model.IntegrationLog, error) {
	return s.logRepo.ListByStatus(ctx, status)
}

func lockKeyLog(id uuid.UUID) string {
	return "ilog:" + id.String()
}
