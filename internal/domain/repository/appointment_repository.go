package repository

import (
	"context"
	"time"

	"repairdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentRepository persists appointments. Lookups and listings skip rows
// marked for deletion unless the method name says otherwise. Guarded updates
// return the number of affected rows; 0 means the expected state no longer holds.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindAll(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error)
	FindMarked(ctx context.Context, limit, offset int) ([]entity.Appointment, int64, error)
	FindMarkedIDs(ctx context.Context, markedBefore *time.Time) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, appointment *entity.Appointment, expected entity.AppointmentState) (int64, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, update entity.ScheduleUpdate, expected entity.AppointmentStatus) (int64, error)
	UpdateTechnician(ctx context.Context, id uuid.UUID, technicianID uuid.UUID, expected entity.AppointmentState) (int64, error)
	MarkForDeletion(ctx context.Context, id uuid.UUID, actorID uuid.UUID, at time.Time) (int64, error)
	Restore(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteMarked(ctx context.Context, id uuid.UUID) (int64, error)
}
