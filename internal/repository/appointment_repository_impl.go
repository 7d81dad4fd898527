package repository

import (
	"context"
	"errors"
	"time"

	"repairdesk/internal/domain/entity"
	domainRepo "repairdesk/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notMarkedForDeletion is the default listing filter for the recycle bin axis
const notMarkedForDeletion = "(appointments.marked_for_deletion = ? OR appointments.marked_for_deletion IS NULL)"

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return conn(ctx, r.db).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	return r.findOne(conn(ctx, r.db).Where(notMarkedForDeletion, false), id)
}

func (r *appointmentRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	return r.findOne(conn(ctx, r.db), id)
}

func (r *appointmentRepository) findOne(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Service").Preload("Customer").Preload("Technician").Preload("Review").
		Where("appointments.id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	var appointments []entity.Appointment
	var total int64

	query := conn(ctx, r.db).Model(&entity.Appointment{}).Where(notMarkedForDeletion, false)
	if filter.Status != "" {
		query = query.Where("appointments.status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("appointments.customer_id = ?", *filter.CustomerID)
	}
	if filter.TechnicianID != nil {
		query = query.Where("appointments.technician_id = ?", *filter.TechnicianID)
	}
	if filter.ServiceID != 0 {
		query = query.Where("appointments.service_id = ?", filter.ServiceID)
	}
	if filter.From != nil {
		query = query.Where("appointments.scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("appointments.scheduled_at <= ?", *filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Service").Preload("Customer").Preload("Technician").
		Order("appointments.scheduled_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

func (r *appointmentRepository) FindMarked(ctx context.Context, limit, offset int) ([]entity.Appointment, int64, error) {
	var appointments []entity.Appointment
	var total int64

	query := conn(ctx, r.db).Model(&entity.Appointment{}).Where("appointments.marked_for_deletion = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Service").Preload("Customer").
		Order("appointments.marked_for_deletion_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

func (r *appointmentRepository) FindMarkedIDs(ctx context.Context, markedBefore *time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	query := conn(ctx, r.db).Model(&entity.Appointment{}).Where("marked_for_deletion = ?", true)
	if markedBefore != nil {
		query = query.Where("marked_for_deletion_at < ?", *markedBefore)
	}
	if err := query.Order("marked_for_deletion_at").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateStatus writes the lifecycle columns ONLY if the row still has the expected status and technician.
// Returns affected rows: 1 = applied, 0 = stale state (another request won the race).
func (r *appointmentRepository) UpdateStatus(ctx context.Context, appointment *entity.Appointment, expected entity.AppointmentState) (int64, error) {
	query := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", appointment.ID, expected.Status).
		Where(notMarkedForDeletion, false)
	result := whereTechnician(query, expected.TechnicianID).
		Updates(map[string]interface{}{
			"status":                appointment.Status,
			"technician_id":         appointment.TechnicianID,
			"cancellation_reason":   appointment.CancellationReason,
			"cancellation_category": appointment.CancellationCategory,
			"rejection_reason":      appointment.RejectionReason,
			"cancelled_by":          appointment.CancelledBy,
		})
	return result.RowsAffected, result.Error
}

// UpdateSchedule writes only the schedule columns, so it cannot undo a concurrent reassignment
func (r *appointmentRepository) UpdateSchedule(ctx context.Context, id uuid.UUID, update entity.ScheduleUpdate, expected entity.AppointmentStatus) (int64, error) {
	columns := map[string]interface{}{"scheduled_at": update.ScheduledAt}
	if update.ServiceAddress != nil {
		columns["service_address"] = *update.ServiceAddress
	}
	if update.CustomerNotes != nil {
		columns["customer_notes"] = *update.CustomerNotes
	}

	result := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, expected).
		Where(notMarkedForDeletion, false).
		Updates(columns)
	return result.RowsAffected, result.Error
}

// UpdateTechnician swaps technician_id only while the row still holds the technician the caller read
func (r *appointmentRepository) UpdateTechnician(ctx context.Context, id uuid.UUID, technicianID uuid.UUID, expected entity.AppointmentState) (int64, error) {
	query := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, expected.Status).
		Where(notMarkedForDeletion, false)
	result := whereTechnician(query, expected.TechnicianID).
		Update("technician_id", technicianID)
	return result.RowsAffected, result.Error
}

func whereTechnician(query *gorm.DB, technicianID *uuid.UUID) *gorm.DB {
	if technicianID == nil {
		return query.Where("technician_id IS NULL")
	}
	return query.Where("technician_id = ?", *technicianID)
}

// MarkForDeletion moves an active row into the recycle bin. 0 rows = missing or already marked.
func (r *appointmentRepository) MarkForDeletion(ctx context.Context, id uuid.UUID, actorID uuid.UUID, at time.Time) (int64, error) {
	result := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Where(notMarkedForDeletion, false).
		Updates(map[string]interface{}{
			"marked_for_deletion":    true,
			"marked_for_deletion_at": at,
			"marked_for_deletion_by": actorID,
		})
	return result.RowsAffected, result.Error
}

// Restore clears the recycle bin markers. 0 rows = missing or not marked.
func (r *appointmentRepository) Restore(ctx context.Context, id uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND marked_for_deletion = ?", id, true).
		Updates(map[string]interface{}{
			"marked_for_deletion":    false,
			"marked_for_deletion_at": nil,
			"marked_for_deletion_by": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}

// DeleteMarked removes the row only while it is still in the recycle bin
func (r *appointmentRepository) DeleteMarked(ctx context.Context, id uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Where("id = ? AND marked_for_deletion = ?", id, true).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
