package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStatus represents the state of a checkout session.
type SessionStatus string

const (
	SessionStatusCreated   SessionStatus = "created"
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusError     SessionStatus = "error"
)

// SessionLog tracks a multi-step checkout session from first contact
// until the gateway round trip settles. It references the business
// entity being paid for but is opaque to its contents; individual
// gateway attempts are stored as IntegrationLogs pointing back at it.
type SessionLog struct {
	ID                uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	ReferenceDoctype  string         `json:"reference_doctype" gorm:"type:varchar(100);not null"`
	ReferenceID       string         `json:"reference_id" gorm:"type:varchar(100);not null;index"`
	SelectedButton    string         `json:"selected_button,omitempty" gorm:"type:varchar(100)"`
	HandlerRef        string         `json:"handler_ref,omitempty" gorm:"type:varchar(50)"`
	RedirectTarget    string         `json:"redirect_target,omitempty" gorm:"type:varchar(500)"`
	Status            SessionStatus  `json:"status" gorm:"type:varchar(20);not null;default:'created';index"`
	ResponsePayload   string         `json:"response_payload,omitempty" gorm:"type:text"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (s *SessionLog) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Selectable reports whether the session still accepts a payment
// button choice.
func (s *SessionLog) Selectable() bool {
	return s.Status == SessionStatusCreated || s.Status == SessionStatusRunning
}
