package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "paylog/internal/errors"
	"paylog/internal/gateway"
	"paylog/internal/lock"
	"paylog/internal/model"
	"paylog/internal/repository"
)

// refParam carries the reference token on checkout URLs.
const refParam = "tx_ref"

// Reference points at the record a gateway response belongs to.
// Exactly one of the two fields must be set: gateways configured with
// session-driven checkout reference the session, server-to-server
// callbacks reference the integration log directly.
type Reference struct {
	SessionID *uuid.UUID
	LogID     *uuid.UUID
}

// ResponsePayload is the signed client answer delivered by the gateway.
type ResponsePayload struct {
	Data []byte
	Hash string
}

// ProcessResult is the router's decision: the settled status and where
// the client should navigate next. The router never redirects itself.
type ProcessResult struct {
	Status     gateway.OutcomeStatus `json:"status"`
	RedirectTo string                `json:"redirect_to"`
}

// InitiateResult is returned when a payment attempt is opened for a
// session.
type InitiateResult struct {
	LogID      uuid.UUID `json:"log_id"`
	PaymentURL string    `json:"payment_url"`
}

// Redirects is the read-only page configuration outcomes map onto.
type Redirects struct {
	Success  string
	Failure  string
	Pending  string
	Checkout string
}

// ResponseService terminates the asynchronous gateway round trip: it
// resolves a reference token, verifies and dispatches the payload, and
// turns the outcome into a persisted status plus a redirect decision.
type ResponseService interface {
	ProcessResponse(ctx context.Context, ref Reference, payload ResponsePayload) (*ProcessResult, error)
	InitiatePayment(ctx context.Context, sessionID uuid.UUID, txData model.TxData) (*InitiateResult, error)
}

type responseService struct {
	logRepo     repository.IntegrationLogRepository
	sessionRepo repository.SessionLogRepository
	registry    *gateway.Registry
	locker      lock.Locker
	redirects   Redirects
	timeout     time.Duration
}

// NewResponseService creates a response service.
func NewResponseService(
	logRepo repository.IntegrationLogRepository,
	sessionRepo repository.SessionLogRepository,
	registry *gateway.Registry,
	locker lock.Locker,
	redirects Redirects,
	timeout time.Duration,
) ResponseService {
	return &responseService{
		logRepo:     logRepo,
		sessionRepo: sessionRepo,
		registry:    registry,
		locker:      locker,
		redirects:   redirects,
		timeout:     timeout,
	}
}

// ProcessResponse handles a gateway callback. Verification happens
// before any record is touched: a payload failing the integrity check
// mutates nothing regardless of what it claims. Re-delivery of a
// verified payload for an already settled record is a no-op that
// returns the same redirect.
func (s *responseService) ProcessResponse(ctx context.Context, ref Reference, payload ResponsePayload) (*ProcessResult, error) {
	rec, session, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	adapter, err := s.registry.Resolve(rec.HandlerRef)
	if err != nil {
		return nil, err
	}

	if err := adapter.VerifySignature(payload.Data, payload.Hash); err != nil {
		log.Warn().
			Str("log_id", rec.ID.String()).
			Str("handler", rec.HandlerRef).
			Msg("response payload failed integrity check")
		return nil, apperrors.ErrIntegrityCheckFailed
	}

	key := lockKeyLog(rec.ID)
	acquired, err := s.locker.TryAcquire(ctx, key)
	if err != nil {
		return nil, err
	}
	if !acquired {
		// Another flow (a racing retry or duplicate delivery) holds the
		// record; report its current state instead of re-processing.
		return s.resultForStatus(rec.Status), nil
	}
	defer s.locker.Release(ctx, key)

	// A retry may have settled the record between resolve and winning
	// the token; re-read under the lock before deciding anything.
	rec, err = s.logRepo.FindByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	if rec.Status == model.LogStatusSuccess {
		return s.resultForStatus(rec.Status), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := adapter.Process(callCtx, payload.Data)
	if err != nil {
		gerr := &apperrors.GatewayError{Handler: rec.HandlerRef, Err: err}
		log.Error().Err(gerr).Str("log_id", rec.ID.String()).Msg("adapter processing failed")
		if uerr := s.persist(ctx, rec, session, gateway.Outcome{Status: gateway.OutcomeError, Message: gerr.Error()}); uerr != nil {
			return nil, uerr
		}
		return &ProcessResult{Status: gateway.OutcomeError, RedirectTo: s.redirects.Failure}, nil
	}

	if err := s.persist(ctx, rec, session, outcome); err != nil {
		return nil, err
	}
	return &ProcessResult{Status: outcome.Status, RedirectTo: s.redirectFor(outcome.Status)}, nil
}

// resolve turns a reference token into exactly one pending integration
// log, plus its session when the token named one.
func (s *responseService) resolve(ctx context.Context, ref Reference) (*model.IntegrationLog, *model.SessionLog, error) {
	if (ref.SessionID == nil) == (ref.LogID == nil) {
		return nil, nil, apperrors.ErrAmbiguousReference
	}

	if ref.LogID != nil {
		rec, err := s.logRepo.FindByID(ctx, *ref.LogID)
		if err != nil {
			if errors.Is(err, apperrors.ErrLogNotFound) {
				return nil, nil, apperrors.ErrUnknownReference
			}
			return nil, nil, err
		}
		return rec, nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, *ref.SessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, nil, apperrors.ErrUnknownReference
		}
		return nil, nil, err
	}
	logs, err := s.logRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(logs) == 0 {
		return nil, nil, apperrors.ErrUnknownReference
	}
	// Latest attempt is the pending one.
	return &logs[len(logs)-1], session, nil
}

// persist writes the adapter's classification to the integration log
// and, for session-driven flows, to the session.
func (s *responseService) persist(ctx context.Context, rec *model.IntegrationLog, session *model.SessionLog, outcome gateway.Outcome) error {
	var logStatus model.LogStatus
	var sessionStatus model.SessionStatus
	switch outcome.Status {
	case gateway.OutcomeCompleted:
		logStatus, sessionStatus = model.LogStatusSuccess, model.SessionStatusCompleted
	case gateway.OutcomeRunning:
		// Unsettled: the record stays queued for a later webhook,
		// duplicate delivery, or operator retry.
		logStatus, sessionStatus = model.LogStatusQueued, model.SessionStatusRunning
	default:
		logStatus, sessionStatus = model.LogStatusError, model.SessionStatusError
	}

	if err := s.logRepo.UpdateStatus(ctx, rec.ID, logStatus, string(outcome.Response), outcome.Message); err != nil {
		return err
	}
	rec.Status = logStatus

	if session != nil {
		session.Status = sessionStatus
		session.ResponsePayload = string(outcome.Response)
		session.RedirectTarget = s.redirectFor(outcome.Status)
		if err := s.sessionRepo.Update(ctx, session); err != nil {
			return err
		}
	}
	return nil
}

func (s *responseService) redirectFor(status gateway.OutcomeStatus) string {
	switch status {
	case gateway.OutcomeCompleted:
		return s.redirects.Success
	case gateway.OutcomeRunning:
		return s.redirects.Pending
	default:
		return s.redirects.Failure
	}
}

// resultForStatus maps a record's stored status to the same decision a
// fresh settlement would have produced, keeping duplicate deliveries
// idempotent.
func (s *responseService) resultForStatus(status model.LogStatus) *ProcessResult {
	switch status {
	case model.LogStatusSuccess:
		return &ProcessResult{Status: gateway.OutcomeCompleted, RedirectTo: s.redirects.Success}
	case model.LogStatusError:
		return &ProcessResult{Status: gateway.OutcomeError, RedirectTo: s.redirects.Failure}
	default:
		return &ProcessResult{Status: gateway.OutcomeRunning, RedirectTo: s.redirects.Pending}
	}
}

// InitiatePayment opens a gateway attempt for a session whose payment
// button has been selected. The transaction snapshot is serialized
// verbatim into the new record so a later retry replays exactly this
// request.
func (s *responseService) InitiatePayment(ctx context.Context, sessionID uuid.UUID, txData model.TxData) (*InitiateResult, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HandlerRef == "" || !session.Selectable() {
		return nil, apperrors.ErrInvalidState
	}
	if _, err := s.registry.Resolve(session.HandlerRef); err != nil {
		return nil, err
	}

	payload, err := txData.Marshal()
	if err != nil {
		return nil, err
	}

	rec := &model.IntegrationLog{
		SessionID:      &session.ID,
		HandlerRef:     session.HandlerRef,
		RequestPayload: payload,
		Status:         model.LogStatusQueued,
	}
	if err := s.logRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	q := url.Values{refParam: {rec.ID.String()}}
	return &InitiateResult{
		LogID:      rec.ID,
		PaymentURL: s.redirects.Checkout + "?" + q.Encode(),
	}, nil
}
