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
	"github.com/jinzhu/now"
	"github.com/sirupsen/logrus"
)

var (
	ErrServiceUnavailable  = errors.New("service is not available for booking")
	ErrInvalidTechnician   = errors.New("technician not found or inactive")
	ErrInvalidCustomer     = errors.New("customer not found or inactive")
	ErrSchedulePast        = errors.New("cannot schedule an appointment in the past")
	ErrInvalidStatusFilter = errors.New("invalid status filter")
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, actor workflow.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListAppointments(ctx context.Context, actor workflow.Actor, query *dto.ListAppointmentsQuery) (*dto.AppointmentListResponse, error)
	RequestTransition(ctx context.Context, actor workflow.Actor, id uuid.UUID, req *dto.TransitionRequest) (*dto.AppointmentResponse, error)
	UpdateSchedule(ctx context.Context, actor workflow.Actor, id uuid.UUID, req *dto.UpdateScheduleRequest) (*dto.AppointmentResponse, error)
	ReassignTechnician(ctx context.Context, actor workflow.Actor, id uuid.UUID, req *dto.ReassignTechnicianRequest) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	transactor      repository.Transactor
	appointmentRepo repository.AppointmentRepository
	serviceRepo     repository.ServiceRepository
	userRepo        repository.UserRepository
	auditService    service.AuditService
	now             func() time.Time
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	appointmentRepo repository.AppointmentRepository,
	serviceRepo repository.ServiceRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		transactor:      transactor,
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		userRepo:        userRepo,
		auditService:    auditService,
		now:             time.Now,
	}
}

// CreateAppointment books a service in Pending status.
// Customers book for themselves; staff book walk-ins on behalf of a customer.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, actor workflow.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	customerID := actor.ID
	if req.CustomerID != nil {
		customerID = *req.CustomerID
	}

	appointment := &entity.Appointment{
		CustomerID:     customerID,
		ServiceID:      req.ServiceID,
		ScheduledAt:    req.ScheduledAt.UTC(),
		ServiceAddress: req.ServiceAddress,
		CustomerNotes:  req.CustomerNotes,
		Status:         entity.AppointmentStatusPending,
		CreatedBy:      actor.ID,
	}

	if err := workflow.Permit(actor, workflow.ActionCreate, appointment); err != nil {
		return nil, err
	}
	if req.CustomerID == nil && actor.RoleID != entity.RoleIDCustomer {
		return nil, fmt.Errorf("%w: customer_id is required for walk-in bookings", workflow.ErrMissingField)
	}
	if !appointment.ScheduledAt.After(u.now()) {
		return nil, ErrSchedulePast
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		svc, err := u.serviceRepo.FindByID(ctx, req.ServiceID)
		if err != nil {
			u.log.Warnf("Failed to find service %d: %+v", req.ServiceID, err)
			return err
		}
		if svc == nil {
			return ErrServiceNotFound
		}
		if !svc.IsActive {
			return ErrServiceUnavailable
		}

		if customerID != actor.ID {
			if err := u.ensureRole(ctx, customerID, entity.RoleIDCustomer, ErrInvalidCustomer); err != nil {
				return err
			}
		}

		if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
			u.log.Warnf("Failed to create appointment: %+v", err)
			return err
		}

		return u.auditService.LogAppointment(ctx, &actor.ID, appointment.ID, entity.AuditActionAppointmentCreate, entity.JSON{
			"status":       string(appointment.Status),
			"service_id":   appointment.ServiceID,
			"customer_id":  appointment.CustomerID.String(),
			"scheduled_at": appointment.ScheduledAt.Format(time.RFC3339),
		})
	})
	if err != nil {
		return nil, err
	}

	return u.reload(ctx, appointment.ID)
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, workflow.ErrNotFound
	}
	if !canView(actor, appointment) {
		return nil, fmt.Errorf("%w: appointment belongs to another customer", workflow.ErrForbidden)
	}

	return converter.AppointmentToResponse(appointment), nil
}

// ListAppointments returns active appointments visible to the actor.
// Customers only see their bookings and technicians only their assignments.
func (u *appointmentUsecase) ListAppointments(ctx context.Context, actor workflow.Actor, query *dto.ListAppointmentsQuery) (*dto.AppointmentListResponse, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	filter := entity.AppointmentFilter{
		CustomerID:   query.CustomerID,
		TechnicianID: query.TechnicianID,
		ServiceID:    query.ServiceID,
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}

	if query.Status != "" {
		status, ok := entity.ParseAppointmentStatus(query.Status)
		if !ok {
			return nil, ErrInvalidStatusFilter
		}
		filter.Status = status
	}

	if query.Date != "" {
		day, err := time.Parse("2006-01-02", query.Date)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		from := now.With(day).BeginningOfDay()
		to := now.With(day).EndOfDay()
		filter.From = &from
		filter.To = &to
	}

	if workflow.Authorize(actor.RoleID, workflow.ActionViewAll) != workflow.GrantAllow {
		actorID := actor.ID
		switch actor.RoleID {
		case entity.RoleIDCustomer:
			filter.CustomerID = &actorID
		case entity.RoleIDTechnician:
			filter.TechnicianID = &actorID
		default:
			return nil, fmt.Errorf("%w: role cannot list appointments", workflow.ErrForbidden)
		}
	}

	appointments, total, err := u.appointmentRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
	}, nil
}

// RequestTransition moves an appointment to the requested status.
//
// Flow:
// 1. Load the active appointment
// 2. Plan the transition (edge exists, actor permitted, required data present)
// 3. Write the new status guarded by the status read in step 1
// 4. Append the audit entry in the same transaction
func (u *appointmentUsecase) RequestTransition(ctx context.Context, actor workflow.Actor, id uuid.UUID, req *dto.TransitionRequest) (*dto.AppointmentResponse, error) {
	target, ok := entity.ParseAppointmentStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", workflow.ErrInvalidTransition, req.Status)
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByID(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", id, err)
			return err
		}
		if appointment == nil {
			return workflow.ErrNotFound
		}

		transition, err := workflow.Plan(appointment, actor, workflow.TransitionInput{
			Target:       target,
			TechnicianID: req.TechnicianID,
			Reason:       req.Reason,
			Category:     req.Category,
		})
		if err != nil {
			return err
		}

		if transition.TechnicianID != nil {
			if err := u.ensureRole(ctx, *transition.TechnicianID, entity.RoleIDTechnician, ErrInvalidTechnician); err != nil {
				return err
			}
		}

		expected := appointment.State()
		transition.ApplyTo(appointment)

		rows, err := u.appointmentRepo.UpdateStatus(ctx, appointment, expected)
		if err != nil {
			u.log.Warnf("Failed to update appointment status: %+v", err)
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: appointment changed since it was read as %s", workflow.ErrConflict, expected.Status)
		}

		return u.auditService.LogAppointment(ctx, &actor.ID, appointment.ID, transition.Edge.AuditAction, transition.AuditMetadata())
	})
	if err != nil {
		return nil, err
	}

	return u.reload(ctx, id)
}

func (u *appointmentUsecase) UpdateSchedule(ctx context.Context, actor workflow.Actor, id uuid.UUID, req *dto.UpdateScheduleRequest) (*dto.AppointmentResponse, error) {
	scheduledAt := req.ScheduledAt.UTC()
	if !scheduledAt.After(u.now()) {
		return nil, ErrSchedulePast
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByID(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", id, err)
			return err
		}
		if appointment == nil {
			return workflow.ErrNotFound
		}
		if err := workflow.CheckEditable(actor, workflow.ActionUpdateSchedule, appointment); err != nil {
			return err
		}

		metadata := entity.JSON{
			"old_scheduled_at": appointment.ScheduledAt.Format(time.RFC3339),
			"new_scheduled_at": scheduledAt.Format(time.RFC3339),
		}

		rows, err := u.appointmentRepo.UpdateSchedule(ctx, id, entity.ScheduleUpdate{
			ScheduledAt:    scheduledAt,
			ServiceAddress: req.ServiceAddress,
			CustomerNotes:  req.CustomerNotes,
		}, appointment.Status)
		if err != nil {
			u.log.Warnf("Failed to update appointment schedule: %+v", err)
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: appointment changed while rescheduling", workflow.ErrConflict)
		}

		return u.auditService.LogAppointment(ctx, &actor.ID, appointment.ID, entity.AuditActionAppointmentReschedule, metadata)
	})
	if err != nil {
		return nil, err
	}

	return u.reload(ctx, id)
}

// ReassignTechnician swaps the assigned technician. Reassigning the current technician is a no-op.
func (u *appointmentUsecase) ReassignTechnician(ctx context.Context, actor workflow.Actor, id uuid.UUID, req *dto.ReassignTechnicianRequest) (*dto.AppointmentResponse, error) {
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByID(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", id, err)
			return err
		}
		if appointment == nil {
			return workflow.ErrNotFound
		}
		if err := workflow.CheckEditable(actor, workflow.ActionReassignTechnician, appointment); err != nil {
			return err
		}
		if appointment.IsAssignedTo(req.TechnicianID) {
			return nil
		}
		if err := u.ensureRole(ctx, req.TechnicianID, entity.RoleIDTechnician, ErrInvalidTechnician); err != nil {
			return err
		}

		metadata := entity.JSON{"new_technician_id": req.TechnicianID.String()}
		if appointment.TechnicianID != nil {
			metadata["old_technician_id"] = appointment.TechnicianID.String()
		}

		rows, err := u.appointmentRepo.UpdateTechnician(ctx, id, req.TechnicianID, appointment.State())
		if err != nil {
			u.log.Warnf("Failed to reassign technician: %+v", err)
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: appointment changed while reassigning", workflow.ErrConflict)
		}

		return u.auditService.LogAppointment(ctx, &actor.ID, appointment.ID, entity.AuditActionAppointmentReassign, metadata)
	})
	if err != nil {
		return nil, err
	}

	return u.reload(ctx, id)
}

// ensureRole checks the user exists, is active and holds the role
func (u *appointmentUsecase) ensureRole(ctx context.Context, userID uuid.UUID, roleID int, notValid error) error {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return err
	}
	if user == nil || user.RoleID != roleID || !user.Active() {
		return notValid
	}
	return nil
}

func (u *appointmentUsecase) reload(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, workflow.ErrNotFound
	}
	return converter.AppointmentToResponse(appointment), nil
}

func canView(actor workflow.Actor, appointment *entity.Appointment) bool {
	if workflow.Authorize(actor.RoleID, workflow.ActionViewAll) == workflow.GrantAllow {
		return true
	}
	return appointment.IsOwnedBy(actor.ID) || appointment.IsAssignedTo(actor.ID)
}
