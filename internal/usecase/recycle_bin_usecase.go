package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"repairdesk/internal/converter"
	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/domain/entity"
	"repairdesk/internal/domain/repository"
	"repairdesk/internal/domain/workflow"
	"repairdesk/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RecycleBinLockName serializes purges across replicas
const RecycleBinLockName = "recycle-bin-purge"

// Per-id outcomes of a bulk soft-delete
const (
	BulkResultDeleted        = "deleted"
	BulkResultNotFound       = "not_found"
	BulkResultAlreadyDeleted = "already_deleted"
)

type RecycleBinUsecase interface {
	SoftDelete(ctx context.Context, actor workflow.Actor, id uuid.UUID) error
	Restore(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	PermanentDelete(ctx context.Context, actor workflow.Actor, id uuid.UUID) error
	BulkSoftDelete(ctx context.Context, actor workflow.Actor, req *dto.BulkDeleteRequest) (*dto.BulkDeleteResponse, error)
	ListRecycleBin(ctx context.Context, actor workflow.Actor, page, limit int) (*dto.AppointmentListResponse, error)
	EmptyRecycleBin(ctx context.Context, actor workflow.Actor) (*dto.EmptyRecycleBinResponse, error)
	PurgeExpired(ctx context.Context, retention time.Duration) (int, error)
}

type recycleBinUsecase struct {
	log             *logrus.Logger
	transactor      repository.Transactor
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
	locker          service.Locker
	aggregate       *ratingAggregate
	now             func() time.Time
}

func NewRecycleBinUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	appointmentRepo repository.AppointmentRepository,
	reviewRepo repository.ReviewRepository,
	technicianProfileRepo repository.TechnicianProfileRepository,
	auditService service.AuditService,
	locker service.Locker,
	ratingCache service.RatingCache,
) RecycleBinUsecase {
	return &recycleBinUsecase{
		log:             log,
		transactor:      transactor,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		locker:          locker,
		aggregate:       newRatingAggregate(log, reviewRepo, technicianProfileRepo, ratingCache),
		now:             time.Now,
	}
}

// SoftDelete moves an appointment into the recycle bin. Its status is left untouched.
func (u *recycleBinUsecase) SoftDelete(ctx context.Context, actor workflow.Actor, id uuid.UUID) error {
	if err := workflow.Permit(actor, workflow.ActionSoftDelete, nil); err != nil {
		return err
	}

	return u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		result, err := u.markOne(ctx, actor, id)
		if err != nil {
			return err
		}
		switch result {
		case BulkResultNotFound:
			return workflow.ErrNotFound
		case BulkResultAlreadyDeleted:
			return fmt.Errorf("%w: appointment is already in the recycle bin", workflow.ErrConflict)
		}
		return nil
	})
}

func (u *recycleBinUsecase) Restore(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	if err := workflow.Permit(actor, workflow.ActionRestore, nil); err != nil {
		return nil, err
	}

	var restored *entity.Appointment
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByIDIncludingDeleted(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", id, err)
			return err
		}
		if appointment == nil {
			return workflow.ErrNotFound
		}
		if !appointment.MarkedForDeletion {
			return fmt.Errorf("%w: appointment is not in the recycle bin", workflow.ErrInvalidState)
		}

		rows, err := u.appointmentRepo.Restore(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to restore appointment %s: %+v", id, err)
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: appointment left the recycle bin concurrently", workflow.ErrConflict)
		}

		appointment.Restore()
		restored = appointment

		return u.auditService.LogAppointment(ctx, &actor.ID, id, entity.AuditActionAppointmentRestore, entity.JSON{
			"status": string(appointment.Status),
		})
	})
	if err != nil {
		return nil, err
	}

	return converter.AppointmentToResponse(restored), nil
}

// PermanentDelete removes one appointment that is either in the recycle bin or closed
func (u *recycleBinUsecase) PermanentDelete(ctx context.Context, actor workflow.Actor, id uuid.UUID) error {
	var rated *ratedTechnician
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByIDIncludingDeleted(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", id, err)
			return err
		}
		if appointment == nil {
			return workflow.ErrNotFound
		}
		if err := workflow.CheckPurgeable(actor, appointment); err != nil {
			return err
		}

		var rows int64
		if appointment.MarkedForDeletion {
			rows, err = u.appointmentRepo.DeleteMarked(ctx, id)
		} else {
			rows, err = u.appointmentRepo.Delete(ctx, id)
		}
		if err != nil {
			u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: appointment changed before it could be deleted", workflow.ErrConflict)
		}

		if rated, err = u.recomputeAfterDelete(ctx, appointment); err != nil {
			return err
		}

		return u.auditService.LogAppointment(ctx, &actor.ID, id, entity.AuditActionAppointmentPurge, purgeSnapshot(appointment, "manual"))
	})
	if err != nil {
		return err
	}

	u.refreshRatings(ctx, rated)
	return nil
}

// BulkSoftDelete marks every listed appointment and reports the outcome per id.
// Duplicate ids are reported once.
func (u *recycleBinUsecase) BulkSoftDelete(ctx context.Context, actor workflow.Actor, req *dto.BulkDeleteRequest) (*dto.BulkDeleteResponse, error) {
	if err := workflow.Permit(actor, workflow.ActionBulkDelete, nil); err != nil {
		return nil, err
	}

	response := &dto.BulkDeleteResponse{Results: make([]dto.BulkDeleteResult, 0, len(req.IDs))}
	seen := make(map[uuid.UUID]struct{}, len(req.IDs))

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, id := range req.IDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			result, err := u.markOne(ctx, actor, id)
			if err != nil {
				return err
			}
			if result == BulkResultDeleted {
				response.Deleted++
			}
			response.Results = append(response.Results, dto.BulkDeleteResult{ID: id, Result: result})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (u *recycleBinUsecase) ListRecycleBin(ctx context.Context, actor workflow.Actor, page, limit int) (*dto.AppointmentListResponse, error) {
	if err := workflow.Permit(actor, workflow.ActionViewRecycleBin, nil); err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	appointments, total, err := u.appointmentRepo.FindMarked(ctx, limit, (page-1)*limit)
	if err != nil {
		u.log.Warnf("Failed to list recycle bin: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
	}, nil
}

// EmptyRecycleBin permanently deletes every marked appointment
func (u *recycleBinUsecase) EmptyRecycleBin(ctx context.Context, actor workflow.Actor) (*dto.EmptyRecycleBinResponse, error) {
	if err := workflow.Permit(actor, workflow.ActionEmptyRecycleBin, nil); err != nil {
		return nil, err
	}

	var purged int
	err := u.locker.WithLock(ctx, RecycleBinLockName, func(ctx context.Context) error {
		var err error
		purged, err = u.purge(ctx, &actor.ID, nil, "empty_recycle_bin")
		return err
	})
	if err != nil {
		if errors.Is(err, service.ErrLockNotAcquired) {
			return nil, fmt.Errorf("%w: a recycle bin purge is already running", workflow.ErrConflict)
		}
		return nil, err
	}

	u.log.Infof("Recycle bin emptied by %s: %d appointments purged", actor.ID, purged)
	return &dto.EmptyRecycleBinResponse{Purged: purged}, nil
}

// PurgeExpired deletes appointments marked longer than retention ago.
// Returns 0 without error when another replica holds the purge lock.
func (u *recycleBinUsecase) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := u.now().Add(-retention)

	var purged int
	err := u.locker.WithLock(ctx, RecycleBinLockName, func(ctx context.Context) error {
		var err error
		purged, err = u.purge(ctx, nil, &cutoff, "retention")
		return err
	})
	if err != nil {
		if errors.Is(err, service.ErrLockNotAcquired) {
			u.log.Infof("Recycle bin purge skipped: lock held elsewhere")
			return 0, nil
		}
		return purged, err
	}

	return purged, nil
}

// markOne soft-deletes a single appointment inside the caller's transaction
func (u *recycleBinUsecase) markOne(ctx context.Context, actor workflow.Actor, id uuid.UUID) (string, error) {
	appointment, err := u.appointmentRepo.FindByIDIncludingDeleted(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return "", err
	}
	if appointment == nil {
		return BulkResultNotFound, nil
	}
	if appointment.MarkedForDeletion {
		return BulkResultAlreadyDeleted, nil
	}

	at := u.now().UTC()
	rows, err := u.appointmentRepo.MarkForDeletion(ctx, id, actor.ID, at)
	if err != nil {
		u.log.Warnf("Failed to mark appointment %s for deletion: %+v", id, err)
		return "", err
	}
	if rows == 0 {
		return BulkResultAlreadyDeleted, nil
	}

	err = u.auditService.LogAppointment(ctx, &actor.ID, id, entity.AuditActionAppointmentSoftDelete, entity.JSON{
		"status":    string(appointment.Status),
		"marked_at": at.Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return BulkResultDeleted, nil
}

// purge deletes marked appointments one transaction at a time, so a failure keeps earlier deletions
func (u *recycleBinUsecase) purge(ctx context.Context, actorID *uuid.UUID, markedBefore *time.Time, reason string) (int, error) {
	ids, err := u.appointmentRepo.FindMarkedIDs(ctx, markedBefore)
	if err != nil {
		u.log.Warnf("Failed to list marked appointments: %+v", err)
		return 0, err
	}

	purged := 0
	for _, id := range ids {
		deleted := false
		var rated *ratedTechnician
		err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			appointment, err := u.appointmentRepo.FindByIDIncludingDeleted(ctx, id)
			if err != nil {
				return err
			}
			if appointment == nil || !appointment.MarkedForDeletion {
				return nil
			}

			rows, err := u.appointmentRepo.DeleteMarked(ctx, id)
			if err != nil {
				return err
			}
			if rows == 0 {
				return nil
			}

			if rated, err = u.recomputeAfterDelete(ctx, appointment); err != nil {
				return err
			}

			deleted = true
			return u.auditService.LogAppointment(ctx, actorID, id, entity.AuditActionAppointmentPurge, purgeSnapshot(appointment, reason))
		})
		if err != nil {
			u.log.Warnf("Failed to purge appointment %s: %+v", id, err)
			return purged, err
		}
		if deleted {
			purged++
			u.refreshRatings(ctx, rated)
		}
	}

	return purged, nil
}

// ratedTechnician is a technician whose aggregate changed in a committed delete
type ratedTechnician struct {
	id      uuid.UUID
	summary service.CachedRating
}

// recomputeAfterDelete refreshes the technician aggregate once the appointment's review is gone.
// The review row is removed by the fk_reviews_appointment cascade in the same transaction.
func (u *recycleBinUsecase) recomputeAfterDelete(ctx context.Context, appointment *entity.Appointment) (*ratedTechnician, error) {
	if appointment.Review == nil || appointment.Review.TechnicianID == nil {
		return nil, nil
	}

	technicianID := *appointment.Review.TechnicianID
	summary, err := u.aggregate.recompute(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	return &ratedTechnician{id: technicianID, summary: *summary}, nil
}

func (u *recycleBinUsecase) refreshRatings(ctx context.Context, rated *ratedTechnician) {
	if rated != nil {
		u.aggregate.refreshCache(ctx, rated.id, rated.summary)
	}
}

func purgeSnapshot(appointment *entity.Appointment, reason string) entity.JSON {
	return entity.JSON{
		"reason":       reason,
		"status":       string(appointment.Status),
		"customer_id":  appointment.CustomerID.String(),
		"service_id":   appointment.ServiceID,
		"scheduled_at": appointment.ScheduledAt.Format(time.RFC3339),
	}
}
