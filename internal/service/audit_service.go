package service

import (
	"context"
	"encoding/json"
	"time"

	"repairdesk/internal/domain/entity"
	"repairdesk/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditService appends audit entries and queues the matching activity event.
// Both writes use ctx, so they join the caller's transaction.
type AuditService interface {
	LogAppointment(ctx context.Context, actorID *uuid.UUID, appointmentID uuid.UUID, action string, metadata entity.JSON) error
	LogCreate(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, oldValue interface{}) error
}

// ActivityEvent is the payload relayed to the message broker for every audit entry
type ActivityEvent struct {
	Action        string      `json:"action"`
	ActorID       *uuid.UUID  `json:"actor_id,omitempty"`
	AppointmentID *uuid.UUID  `json:"appointment_id,omitempty"`
	Metadata      entity.JSON `json:"metadata,omitempty"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

type auditService struct {
	log        *logrus.Logger
	auditRepo  repository.AuditLogRepository
	outboxRepo repository.OutboxRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository, outboxRepo repository.OutboxRepository) AuditService {
	return &auditService{
		log:        log,
		auditRepo:  auditRepo,
		outboxRepo: outboxRepo,
	}
}

// LogAppointment logs an appointment lifecycle action
func (s *auditService) LogAppointment(ctx context.Context, actorID *uuid.UUID, appointmentID uuid.UUID, action string, metadata entity.JSON) error {
	return s.record(ctx, &entity.AuditLog{
		UserID:        actorID,
		AppointmentID: &appointmentID,
		Action:        action,
		Metadata:      metadata,
	}, "appointment", appointmentID.String())
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	return s.record(ctx, &entity.AuditLog{
		UserID: actorID,
		Action: action,
		Metadata: entity.JSON{
			"entity":    entityName,
			"entity_id": entityID,
			"old_value": nil,
			"new_value": newValue,
		},
	}, entityName, entityID)
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.record(ctx, &entity.AuditLog{
		UserID: actorID,
		Action: action,
		Metadata: entity.JSON{
			"entity":    entityName,
			"entity_id": entityID,
			"old_value": oldValue,
			"new_value": newValue,
		},
	}, entityName, entityID)
}

// LogDelete logs a delete action with old value
func (s *auditService) LogDelete(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, oldValue interface{}) error {
	return s.record(ctx, &entity.AuditLog{
		UserID: actorID,
		Action: action,
		Metadata: entity.JSON{
			"entity":    entityName,
			"entity_id": entityID,
			"old_value": oldValue,
			"new_value": nil,
		},
	}, entityName, entityID)
}

func (s *auditService) record(ctx context.Context, auditLog *entity.AuditLog, aggregateType, aggregateID string) error {
	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	payload, err := json.Marshal(ActivityEvent{
		Action:        auditLog.Action,
		ActorID:       auditLog.UserID,
		AppointmentID: auditLog.AppointmentID,
		Metadata:      auditLog.Metadata,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		s.log.Warnf("Failed to encode activity event: %+v", err)
		return err
	}

	event := &entity.OutboxEvent{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     auditLog.Action,
		Payload:       payload,
	}
	if err := s.outboxRepo.Insert(ctx, event); err != nil {
		s.log.Warnf("Failed to queue activity event: %+v", err)
		return err
	}

	return nil
}
