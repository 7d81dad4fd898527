package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SubmitReviewRequest struct {
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Feedback string `json:"feedback" validate:"omitempty,max=2000"`
}

// Response DTOs

type ReviewResponse struct {
	ID            int64      `json:"id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	TechnicianID  *uuid.UUID `json:"technician_id,omitempty"`
	Rating        int        `json:"rating"`
	Feedback      string     `json:"feedback,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
