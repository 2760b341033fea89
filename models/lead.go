package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is a quote request submitted from the public marketing site.
type Lead struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name            string `gorm:"not null"`
	Phone           string `gorm:"not null"`
	Email           string
	Address         string
	ServiceInterest string
	Message         string `gorm:"type:text"`

	Status string `gorm:"type:varchar(20);default:'new'"` // new, contacted, converted

	gorm.Model
}

func (l *Lead) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
