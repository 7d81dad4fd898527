package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateAppointmentRequest books a service. CustomerID is only read for
// walk-in bookings entered by staff; customers always book for themselves.
type CreateAppointmentRequest struct {
	CustomerID     *uuid.UUID `json:"customer_id" validate:"omitempty"`
	ServiceID      int        `json:"service_id" validate:"required,min=1"`
	ScheduledAt    time.Time  `json:"scheduled_at" validate:"required"`
	ServiceAddress string     `json:"service_address" validate:"required,min=5,max=500"`
	CustomerNotes  string     `json:"customer_notes" validate:"omitempty,max=2000"`
}

// TransitionRequest asks for a status change. Status accepts any casing or
// separator style ("in_progress", "In Progress").
type TransitionRequest struct {
	Status       string     `json:"status" validate:"required,appointment_status"`
	TechnicianID *uuid.UUID `json:"technician_id" validate:"omitempty"`
	Reason       string     `json:"reason" validate:"omitempty,max=1000"`
	Category     string     `json:"category" validate:"omitempty,max=100"`
}

type UpdateScheduleRequest struct {
	ScheduledAt    time.Time `json:"scheduled_at" validate:"required"`
	ServiceAddress *string   `json:"service_address" validate:"omitempty,min=5,max=500"`
	CustomerNotes  *string   `json:"customer_notes" validate:"omitempty,max=2000"`
}

type ReassignTechnicianRequest struct {
	TechnicianID uuid.UUID `json:"technician_id" validate:"required"`
}

// ListAppointmentsQuery is parsed from the query string
type ListAppointmentsQuery struct {
	Status       string
	Date         string // Format: YYYY-MM-DD
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	ServiceID    int
	Page         int
	Limit        int
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                   uuid.UUID        `json:"id"`
	Status               string           `json:"status"`
	Customer             UserSummary      `json:"customer"`
	Technician           *UserSummary     `json:"technician,omitempty"`
	Service              *ServiceResponse `json:"service,omitempty"`
	ServiceID            int              `json:"service_id"`
	ScheduledAt          time.Time        `json:"scheduled_at"`
	ServiceAddress       string           `json:"service_address"`
	CustomerNotes        string           `json:"customer_notes,omitempty"`
	CancellationReason   string           `json:"cancellation_reason,omitempty"`
	CancellationCategory string           `json:"cancellation_category,omitempty"`
	RejectionReason      string           `json:"rejection_reason,omitempty"`
	CancelledBy          *uuid.UUID       `json:"cancelled_by,omitempty"`
	MarkedForDeletion    bool             `json:"marked_for_deletion"`
	MarkedForDeletionAt  *time.Time       `json:"marked_for_deletion_at,omitempty"`
	MarkedForDeletionBy  *uuid.UUID       `json:"marked_for_deletion_by,omitempty"`
	Review               *ReviewResponse  `json:"review,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
}

// BulkDeleteResult reports the outcome for one id of a bulk request
type BulkDeleteResult struct {
	ID     uuid.UUID `json:"id"`
	Result string    `json:"result"`
}

type BulkDeleteResponse struct {
	Results []BulkDeleteResult `json:"results"`
	Deleted int                `json:"deleted"`
}

type EmptyRecycleBinResponse struct {
	Purged int `json:"purged"`
}
