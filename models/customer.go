package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name    string `gorm:"not null"`
	Phone   string `gorm:"uniqueIndex:idx_company_phone,priority:2"`
	Email   string
	Address string
	City    string
	Zip     string
	Notes   string

	LoyaltyPoints int     `gorm:"default:0"`
	TotalJobs     int     `gorm:"default:0"`
	TotalSpent    float64 `gorm:"type:decimal(10,2);default:0.0"`
	LastService   *time.Time
	IsActive      bool `gorm:"default:true"`

	Jobs []Job `gorm:"foreignKey:CustomerID"`

	gorm.Model
}

// OptOut is a per-company list of phone numbers that must never receive
// outbound SMS. The reminder selector joins against it.
type OptOut struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_company_optout,priority:1"`
	Phone     string    `gorm:"not null;uniqueIndex:idx_company_optout,priority:2"`
	Reason    string    `gorm:"type:varchar(50)"` // customer_request, carrier_stop
	CreatedAt time.Time
}

func (o *OptOut) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}
