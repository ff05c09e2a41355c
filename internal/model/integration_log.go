package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogStatus represents the processing status of an integration log.
type LogStatus string

const (
	LogStatusQueued  LogStatus = "queued"
	LogStatusSuccess LogStatus = "success"
	LogStatusError   LogStatus = "error"
)

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition. Success is terminal; Error may only go back to
// Queued (a retry) before settling again.
func (s LogStatus) CanTransitionTo(next LogStatus) bool {
	switch s {
	case LogStatusQueued:
		return next == LogStatusSuccess || next == LogStatusError
	case LogStatusError:
		return next == LogStatusQueued
	default:
		return false
	}
}

// IntegrationLog records a single gateway interaction attempt. Every
// inbound/outbound exchange with a payment gateway produces exactly one
// of these; it is never deleted by normal operation.
type IntegrationLog struct {
	ID              uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	SessionID       *uuid.UUID     `json:"session_id,omitempty" gorm:"type:char(36);index"`
	HandlerRef      string         `json:"handler_ref" gorm:"type:varchar(50);not null;index"`
	Status          LogStatus      `json:"status" gorm:"type:varchar(20);not null;default:'queued';index"`
	RequestPayload  string         `json:"request_payload,omitempty" gorm:"type:text"`
	ResponsePayload string         `json:"response_payload,omitempty" gorm:"type:text"`
	Message         string         `json:"message,omitempty" gorm:"type:text"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (l *IntegrationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Retryable reports whether the record can be replayed: it must have
// failed and still carry the original request snapshot.
func (l *IntegrationLog) Retryable() bool {
	return l.Status == LogStatusError && l.RequestPayload != ""
}
