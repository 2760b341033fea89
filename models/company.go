package models

import (
	"github.com/google/uuid"
)

type Company struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Name     string    `gorm:"not null"`
	Address  string
	Phone    string
	Timezone string `gorm:"default:'America/Chicago'"`

	WorkingHours     JSONB `gorm:"type:jsonb;default:'{}'"`
	JobReminders     bool  `gorm:"default:true"`
	FollowupMessages bool  `gorm:"default:true"`
	SMSNotifications bool  `gorm:"default:true"`

	Users            []User            `gorm:"foreignKey:CompanyID"`
	Customers        []Customer        `gorm:"foreignKey:CompanyID"`
	Services         []Service         `gorm:"foreignKey:CompanyID"`
	Jobs             []Job             `gorm:"foreignKey:CompanyID"`
	MessageTemplates []MessageTemplate `gorm:"foreignKey:CompanyID"`
	Promotions       []Promotion       `gorm:"foreignKey:CompanyID"`
}
