package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"paylog/internal/gateway"
	"paylog/internal/model"
)

// MockIntegrationLogRepository is a mock implementation of IntegrationLogRepository.
type MockIntegrationLogRepository struct {
	mock.Mock
}

func (m *MockIntegrationLogRepository) Create(ctx context.Context, log *model.IntegrationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockIntegrationLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.IntegrationLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IntegrationLog), args.Error(1)
}

func (m *MockIntegrationLogRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LogStatus, responsePayload, message string) error {
	args := m.Called(ctx, id, status, responsePayload, message)
	return args.Error(0)
}

func (m *MockIntegrationLogRepository) ListByStatus(ctx context.Context, status model.LogStatus) ([]model.IntegrationLog, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IntegrationLog), args.Error(1)
}

func (m *MockIntegrationLogRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.IntegrationLog, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IntegrationLog), args.Error(1)
}

// MockSessionLogRepository is a mock implementation of SessionLogRepository.
type MockSessionLogRepository struct {
	mock.Mock
}

func (m *MockSessionLogRepository) Create(ctx context.Context, session *model.SessionLog) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SessionLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionLog), args.Error(1)
}

func (m *MockSessionLogRepository) Update(ctx context.Context, session *model.SessionLog) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// MockAdapter is a mock implementation of gateway.Adapter.
type MockAdapter struct {
	mock.Mock
	name string
}

func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{name: name}
}

func (m *MockAdapter) Name() string { return m.name }

func (m *MockAdapter) VerifySignature(data []byte, hash string) error {
	args := m.Called(data, hash)
	return args.Error(0)
}

func (m *MockAdapter) Process(ctx context.Context, data []byte) (gateway.Outcome, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(gateway.Outcome), args.Error(1)
}
