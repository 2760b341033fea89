package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	JobNumber  string    `gorm:"uniqueIndex;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	ScheduledDate      time.Time `gorm:"index;not null"`
	ArrivalWindowStart string    `gorm:"type:varchar(5)"` // "09:00"
	ArrivalWindowEnd   string    `gorm:"type:varchar(5)"` // "11:00"
	Address            string

	Status      string `gorm:"type:varchar(20);default:'scheduled'"` // scheduled, completed, cancelled
	CompletedAt *time.Time

	Subtotal float64 `gorm:"type:decimal(10,2);not null"`
	Discount float64 `gorm:"type:decimal(10,2);default:0.0"`
	Tax      float64 `gorm:"type:decimal(10,2);default:0.0"`
	Total    float64 `gorm:"type:decimal(10,2);not null"`

	PaymentStatus string  `gorm:"type:varchar(20);default:'unpaid'"` // paid, unpaid, partial
	PaidAmount    float64 `gorm:"type:decimal(10,2);default:0.0"`
	PaymentMethod string
	PromotionCode string
	Notes         string

	Items []JobItem `gorm:"foreignKey:JobID"`
}

type JobItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	JobID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceName string    `gorm:"not null"`
	Quantity    int       `gorm:"default:1"` // rooms, stair flights, etc.
	UnitPrice   float64   `gorm:"type:decimal(10,2);not null"`
	TotalPrice  float64   `gorm:"type:decimal(10,2);not null"`
}

// ArrivalWindow formats the technician arrival window for customer messages.
func (j *Job) ArrivalWindow() string {
	if j.ArrivalWindowStart == "" || j.ArrivalWindowEnd == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s", j.ArrivalWindowStart, j.ArrivalWindowEnd)
}
