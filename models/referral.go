package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Referral struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"`

	ReferrerID uuid.UUID `gorm:"type:uuid;index;not null"` // existing customer
	ReferredID uuid.UUID `gorm:"type:uuid;index;not null"` // new customer

	Status       string `gorm:"type:varchar(20);default:'pending'"` // pending, completed
	RewardPoints int    `gorm:"default:50"`
	CompletedAt  *time.Time

	gorm.Model
}

func (r *Referral) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// LoyaltyTransaction is the history behind Customer.LoyaltyPoints. Points
// are awarded on job completion and referral completion, and adjusted
// manually by staff.
type LoyaltyTransaction struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	JobID      *uuid.UUID `gorm:"type:uuid"`

	Points int    `gorm:"not null"` // positive or negative
	Reason string `gorm:"type:varchar(50)"`

	CreatedAt time.Time
}

func (t *LoyaltyTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
