package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter narrows appointment listings. Zero values mean "any".
type AppointmentFilter struct {
	Status       AppointmentStatus
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	ServiceID    int
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}
