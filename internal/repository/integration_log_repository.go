package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "paylog/internal/errors"
	"paylog/internal/model"
)

// IntegrationLogRepository defines integration log persistence
// operations. UpdateStatus is the only mutator; records are
// append-mostly and never deleted by normal operation.
type IntegrationLogRepository interface {
	Create(ctx context.Context, log *model.IntegrationLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.IntegrationLog, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.LogStatus, responsePayload, message string) error
	ListByStatus(ctx context.Context, status model.LogStatus) ([]model.IntegrationLog, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.IntegrationLog, error)
}

type integrationLogRepository struct {
	db *gorm.DB
}

// NewIntegrationLogRepository creates a new integration log repository.
func NewIntegrationLogRepository(db *gorm.DB) IntegrationLogRepository {
	return &integrationLogRepository{db: db}
}

// Create inserts a new integration log record.
func (r *integrationLogRepository) Create(ctx context.Context, log *model.IntegrationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByID finds an integration log by ID.
func (r *integrationLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.IntegrationLog, error) {
	var log model.IntegrationLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

// UpdateStatus transitions a record's status and stores the latest
// response snapshot. The load-check-save runs in a transaction with a
// row-level lock so concurrent writes for the same id serialize and
// illegal transitions (anything out of success) are rejected before
// anything is written.
func (r *integrationLogRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LogStatus, responsePayload, message string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", id)
		if tx.Dialector.Name() == "mysql" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var log model.IntegrationLog
		if err := q.First(&log).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrLogNotFound
			}
			return err
		}

		if log.Status != status && !log.Status.CanTransitionTo(status) {
			return apperrors.ErrInvalidTransition
		}

		updates := map[string]any{"status": status}
		if responsePayload != "" {
			updates["response_payload"] = responsePayload
		}
		if message != "" {
			updates["message"] = message
		}
		return tx.Model(&log).Updates(updates).Error
	})
}

// ListByStatus returns all records currently in the given status.
func (r *integrationLogRepository) ListByStatus(ctx context.Context, status model.LogStatus) ([]model.IntegrationLog, error) {
	var logs []model.IntegrationLog
	if err := r.db.WithContext(ctx).Where("status = ?", status).
		Order("created_at").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// ListBySession returns all attempts recorded for a session.
func (r *integrationLogRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.IntegrationLog, error) {
	var logs []model.IntegrationLog
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).
		Order("created_at").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
