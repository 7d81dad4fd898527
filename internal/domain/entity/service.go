package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is an entry of the repair service catalog
type Service struct {
	ID              int             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	DurationMinutes int             `gorm:"not null;default:60" json:"duration_minutes"`
	IsActive        bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}
