package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer's rating of a completed appointment
type Review struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AppointmentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_reviews_appointment" json:"appointment_id"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	TechnicianID  *uuid.UUID `gorm:"type:uuid;index" json:"technician_id,omitempty"`
	Rating        int        `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Feedback      string     `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)
