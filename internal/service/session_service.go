package service

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	apperrors "paylog/internal/errors"
	"paylog/internal/gateway"
	"paylog/internal/model"
	"paylog/internal/repository"
)

// SessionService tracks the button-driven checkout step that precedes
// a gateway round trip.
type SessionService interface {
	CreateSession(ctx context.Context, referenceDoctype, referenceID string) (*model.SessionLog, error)
	SelectButton(ctx context.Context, sessionID uuid.UUID, buttonName string) (bool, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*model.SessionLog, error)
}

type sessionService struct {
	sessionRepo repository.SessionLogRepository
	buttons     gateway.Buttons
	checkoutURL string
}

// NewSessionService creates a session service.
func NewSessionService(sessionRepo repository.SessionLogRepository, buttons gateway.Buttons, checkoutURL string) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		buttons:     buttons,
		checkoutURL: checkoutURL,
	}
}

// CreateSession records first contact for a business entity being paid
// for. The entity itself stays opaque; only its reference is kept.
func (s *sessionService) CreateSession(ctx context.Context, referenceDoctype, referenceID string) (*model.SessionLog, error) {
	session := &model.SessionLog{
		ReferenceDoctype: referenceDoctype,
		ReferenceID:      referenceID,
		Status:           model.SessionStatusCreated,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectButton records the chosen payment option, binds the session to
// that button's gateway and transitions it to running. The returned
// bool tells the caller whether a new redirect target became available
// and the page should reload; the caller re-fetches full state itself.
func (s *sessionService) SelectButton(ctx context.Context, sessionID uuid.UUID, buttonName string) (bool, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if !session.Selectable() {
		return false, apperrors.ErrInvalidState
	}

	button, err := s.buttons.Resolve(buttonName)
	if err != nil {
		return false, err
	}

	q := url.Values{refParam: {session.ID.String()}}
	target := s.checkoutURL + "?" + q.Encode()
	reload := session.RedirectTarget != target

	session.SelectedButton = button.Name
	session.HandlerRef = button.HandlerRef
	session.RedirectTarget = target
	session.Status = model.SessionStatusRunning
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return false, err
	}
	return reload, nil
}

// GetSession returns the session's current state for the UI to render.
func (s *sessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.SessionLog, error) {
	return s.sessionRepo.FindByID(ctx, sessionID)
}
