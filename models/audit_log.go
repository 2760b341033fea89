package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is an append-only trace of actions. The dispatch cron writes one
// row per reminder processed plus one per run; the SLO alerting job reads
// them. Rows are never updated or deleted.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index"`

	Action   string `gorm:"type:varchar(50);index;not null"`
	Entity   string `gorm:"type:varchar(50);not null"`
	EntityID string `gorm:"type:varchar(64)"`
	Meta     JSONB  `gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
