package models

import (
	"github.com/google/uuid"
)

type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name        string    `gorm:"not null"`
	Description string
	Price       float64 `gorm:"type:decimal(10,2);not null"`
	Duration    int     // in minutes
	Category    string  `gorm:"default:'Carpet'"`
	IsActive    bool    `gorm:"default:true"`

	JobItems []JobItem `gorm:"foreignKey:ServiceID"`
}
