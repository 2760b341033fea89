package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReminderStatusPending   = "pending"
	ReminderStatusCompleted = "completed"
)

// Reminder is a scheduled outbound notification tied to a customer and,
// usually, a job. Rows are created by the scheduling side (job creation,
// follow-ups) and consumed by the dispatch cron.
//
// LockedAt doubles as the row lock: a run claims a reminder with a
// conditional update guarded by `locked_at IS NULL`, so at most one run
// processes it at a time.
type Reminder struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	JobID      *uuid.UUID `gorm:"type:uuid;index"`

	Type  string `gorm:"type:varchar(30);not null"` // job_reminder, followup, promo
	Title string
	Body  string `gorm:"type:text"`

	ScheduledDate time.Time `gorm:"index;not null"`
	Status        string    `gorm:"type:varchar(20);index;default:'pending'"` // pending, completed

	AttemptCount int        `gorm:"default:0"`
	LockedAt     *time.Time `gorm:"type:timestamptz"`
	SnoozedUntil *time.Time `gorm:"type:timestamptz"`

	gorm.Model
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
