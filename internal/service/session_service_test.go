package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "paylog/internal/errors"
	"paylog/internal/gateway"
	"paylog/internal/model"
)

var testButtons = gateway.Buttons{
	"card":     {Name: "card", Label: "Pay by card", HandlerRef: "payzen", Enabled: true},
	"disabled": {Name: "disabled", Label: "Old option", HandlerRef: "payzen", Enabled: false},
}

func TestSessionService_CreateSession(t *testing.T) {
	repo := new(MockSessionLogRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(s *model.SessionLog) bool {
		return s.Status == model.SessionStatusCreated &&
			s.ReferenceDoctype == "sales-order" &&
			s.ReferenceID == "SO-0001"
	})).Return(nil)

	svc := NewSessionService(repo, testButtons, "/pay")

	session, err := svc.CreateSession(context.Background(), "sales-order", "SO-0001")
	assert.NoError(t, err)
	assert.Equal(t, model.SessionStatusCreated, session.Status)
	repo.AssertExpectations(t)
}

func TestSessionService_SelectButton(t *testing.T) {
	sessionID := uuid.New()

	t.Run("first selection reloads and starts running", func(t *testing.T) {
		repo := new(MockSessionLogRepository)
		repo.On("FindByID", mock.Anything, sessionID).Return(&model.SessionLog{
			ID:     sessionID,
			Status: model.SessionStatusCreated,
		}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(s *model.SessionLog) bool {
			return s.Status == model.SessionStatusRunning &&
				s.SelectedButton == "card" &&
				s.HandlerRef == "payzen" &&
				s.RedirectTarget != ""
		})).Return(nil)

		svc := NewSessionService(repo, testButtons, "/pay")

		reload, err := svc.SelectButton(context.Background(), sessionID, "card")
		assert.NoError(t, err)
		assert.True(t, reload)
		repo.AssertExpectations(t)
	})

	t.Run("re-selecting with unchanged target does not reload", func(t *testing.T) {
		repo := new(MockSessionLogRepository)
		svc := NewSessionService(repo, testButtons, "/pay")

		// Target computed by a previous selection of the same session.
		existing := &model.SessionLog{
			ID:             sessionID,
			Status:         model.SessionStatusRunning,
			SelectedButton: "card",
			HandlerRef:     "payzen",
			RedirectTarget: "/pay?tx_ref=" + sessionID.String(),
		}
		repo.On("FindByID", mock.Anything, sessionID).Return(existing, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		reload, err := svc.SelectButton(context.Background(), sessionID, "card")
		assert.NoError(t, err)
		assert.False(t, reload)
	})

	t.Run("unknown button", func(t *testing.T) {
		repo := new(MockSessionLogRepository)
		repo.On("FindByID", mock.Anything, sessionID).Return(&model.SessionLog{
			ID:     sessionID,
			Status: model.SessionStatusCreated,
		}, nil)

		svc := NewSessionService(repo, testButtons, "/pay")

		_, err := svc.SelectButton(context.Background(), sessionID, "bank-wire")
		assert.ErrorIs(t, err, apperrors.ErrButtonNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("disabled button", func(t *testing.T) {
		repo := new(MockSessionLogRepository)
		repo.On("FindByID", mock.Anything, sessionID).Return(&model.SessionLog{
			ID:     sessionID,
			Status: model.SessionStatusRunning,
		}, nil)

		svc := NewSessionService(repo, testButtons, "/pay")

		_, err := svc.SelectButton(context.Background(), sessionID, "disabled")
		assert.ErrorIs(t, err, apperrors.ErrButtonNotFound)
	})

	t.Run("settled session rejects selection", func(t *testing.T) {
		for _, status := range []model.SessionStatus{model.SessionStatusCompleted, model.SessionStatusError} {
			repo := new(MockSessionLogRepository)
			repo.On("FindByID", mock.Anything, sessionID).Return(&model.SessionLog{
				ID:     sessionID,
				Status: status,
			}, nil)

			svc := NewSessionService(repo, testButtons, "/pay")

			_, err := svc.SelectButton(context.Background(), sessionID, "card")
			assert.ErrorIs(t, err, apperrors.ErrInvalidState)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		repo := new(MockSessionLogRepository)
		repo.On("FindByID", mock.Anything, sessionID).Return(nil, apperrors.ErrSessionNotFound)

		svc := NewSessionService(repo, testButtons, "/pay")

		_, err := svc.SelectButton(context.Background(), sessionID, "card")
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}
