package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CommStatusQueued    = "queued"
	CommStatusSent      = "sent"
	CommStatusFailed    = "failed"
	CommStatusDelivered = "delivered"
)

// CommunicationLog records one delivery attempt. For reminder sends the
// ProviderMessageID is the deterministic key `reminder:<id>:<attempt>`,
// which makes the table double as the idempotency ledger: a crash after
// delivery but before the reminder was marked completed is detected by
// finding an existing row with status sent/delivered.
type CommunicationLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ReminderID *uuid.UUID `gorm:"type:uuid;index"`

	ProviderMessageID string `gorm:"uniqueIndex;not null"`
	ProviderSID       string // Twilio message SID, when the send succeeded

	ToNumber     string `gorm:"type:varchar(20)"`
	FromNumber   string `gorm:"type:varchar(20)"`
	Body         string `gorm:"type:text"`
	Status       string `gorm:"type:varchar(20)"` // queued, sent, failed, delivered
	ErrorMessage string `gorm:"type:text"`
	Channel      string `gorm:"type:varchar(20);default:'sms'"`
	SentAt       time.Time

	gorm.Model
}

func (l *CommunicationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
