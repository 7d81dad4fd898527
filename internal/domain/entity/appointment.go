package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "Pending"
	AppointmentStatusConfirmed  AppointmentStatus = "Confirmed"
	AppointmentStatusInProgress AppointmentStatus = "In Progress"
	AppointmentStatusCompleted  AppointmentStatus = "Completed"
	AppointmentStatusCancelled  AppointmentStatus = "Cancelled"
	AppointmentStatusRejected   AppointmentStatus = "Rejected"
)

// AppointmentStatuses lists every status in lifecycle order
func AppointmentStatuses() []AppointmentStatus {
	return []AppointmentStatus{
		AppointmentStatusPending,
		AppointmentStatusConfirmed,
		AppointmentStatusInProgress,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
		AppointmentStatusRejected,
	}
}

var statusByKey = map[string]AppointmentStatus{
	"pending":     AppointmentStatusPending,
	"confirmed":   AppointmentStatusConfirmed,
	"in progress": AppointmentStatusInProgress,
	"completed":   AppointmentStatusCompleted,
	"cancelled":   AppointmentStatusCancelled,
	"canceled":    AppointmentStatusCancelled,
	"rejected":    AppointmentStatusRejected,
}

// ParseAppointmentStatus normalizes external spellings ("in_progress", "In-Progress", "IN PROGRESS")
// into the canonical status. The second return value is false for unknown input.
func ParseAppointmentStatus(raw string) (AppointmentStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")

	status, ok := statusByKey[key]
	return status, ok
}

// IsTerminal reports whether no further transition can leave this status
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusRejected:
		return true
	default:
		return false
	}
}

// Appointment is a customer's request for a repair service
type Appointment struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CustomerID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	TechnicianID   *uuid.UUID        `gorm:"type:uuid;index" json:"technician_id,omitempty"`
	ServiceID      int               `gorm:"not null;index" json:"service_id"`
	ScheduledAt    time.Time         `gorm:"not null;index" json:"scheduled_at"`
	ServiceAddress string            `gorm:"type:text;not null" json:"service_address"`
	CustomerNotes  string            `gorm:"type:text" json:"customer_notes,omitempty"`
	Status         AppointmentStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	CreatedBy      uuid.UUID         `gorm:"type:uuid;not null" json:"created_by"`

	CancellationReason   string     `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancellationCategory string     `gorm:"type:varchar(100)" json:"cancellation_category,omitempty"`
	RejectionReason      string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	CancelledBy          *uuid.UUID `gorm:"type:uuid" json:"cancelled_by,omitempty"`

	MarkedForDeletion   bool       `gorm:"not null;default:false;index" json:"marked_for_deletion"`
	MarkedForDeletionAt *time.Time `json:"marked_for_deletion_at,omitempty"`
	MarkedForDeletionBy *uuid.UUID `gorm:"type:uuid" json:"marked_for_deletion_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Customer   User    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Technician *User   `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Service    Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Review     *Review `gorm:"foreignKey:AppointmentID" json:"review,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsOwnedBy checks if the appointment belongs to the given customer
func (a *Appointment) IsOwnedBy(userID uuid.UUID) bool {
	return a.CustomerID == userID
}

// IsAssignedTo checks if the given technician is assigned to the appointment
func (a *Appointment) IsAssignedTo(userID uuid.UUID) bool {
	return a.TechnicianID != nil && *a.TechnicianID == userID
}

// IsCompleted checks if the appointment has been completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// MarkForDeletion moves the appointment into the recycle bin
func (a *Appointment) MarkForDeletion(actorID uuid.UUID, at time.Time) {
	a.MarkedForDeletion = true
	a.MarkedForDeletionAt = &at
	a.MarkedForDeletionBy = &actorID
}

// Restore takes the appointment out of the recycle bin
func (a *Appointment) Restore() {
	a.MarkedForDeletion = false
	a.MarkedForDeletionAt = nil
	a.MarkedForDeletionBy = nil
}

// AppointmentState is what a guarded write expects to find on the row.
// A mismatch on either column means another request changed it first.
type AppointmentState struct {
	Status       AppointmentStatus
	TechnicianID *uuid.UUID
}

// State snapshots the guarded columns
func (a *Appointment) State() AppointmentState {
	state := AppointmentState{Status: a.Status}
	if a.TechnicianID != nil {
		technicianID := *a.TechnicianID
		state.TechnicianID = &technicianID
	}
	return state
}

// ScheduleUpdate carries the columns a reschedule writes. Nil fields keep their stored value.
type ScheduleUpdate struct {
	ScheduledAt    time.Time
	ServiceAddress *string
	CustomerNotes  *string
}
