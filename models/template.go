package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageTemplate struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"`
	Type      string    `gorm:"type:varchar(30);not null"` // job_reminder, followup, promo
	Body      string    `gorm:"type:text;not null"`
	IsActive  bool      `gorm:"default:true"`
	gorm.Model
}
