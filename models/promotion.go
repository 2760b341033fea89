package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Promotion struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_company_code,priority:1"`

	Code        string `gorm:"not null;uniqueIndex:idx_company_code,priority:2"`
	Description string
	DiscountType string  `gorm:"type:varchar(10);not null"` // percent, fixed
	Amount       float64 `gorm:"type:decimal(10,2);not null"`

	StartsAt       *time.Time
	EndsAt         *time.Time
	MaxRedemptions int `gorm:"default:0"` // 0 = unlimited
	RedeemedCount  int `gorm:"default:0"`
	IsActive       bool `gorm:"default:true"`

	gorm.Model
}

func (p *Promotion) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// Redeemable reports whether the promotion can be applied at the given time.
func (p *Promotion) Redeemable(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	if p.MaxRedemptions > 0 && p.RedeemedCount >= p.MaxRedemptions {
		return false
	}
	return true
}
