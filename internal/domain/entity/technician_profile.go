package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TechnicianProfile holds technician-specific data and the aggregate rating
type TechnicianProfile struct {
	UserID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	Specialization string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	AverageRating  decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0" json:"average_rating"`
	ReviewCount    int             `gorm:"not null;default:0" json:"review_count"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (TechnicianProfile) TableName() string {
	return "technician_profiles"
}
