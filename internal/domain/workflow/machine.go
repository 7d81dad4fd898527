package workflow

import (
	"fmt"
	"strings"

	"repairdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// DefaultRejectionCategory is recorded when a rejection carries no category
const DefaultRejectionCategory = "rejected"

// Edge is a permitted status change together with its data requirements.
// Any edge may carry a technician; RequiresTechnician edges refuse to leave the appointment without one.
type Edge struct {
	From               entity.AppointmentStatus
	To                 entity.AppointmentStatus
	Action             Action
	AuditAction        string
	RequiresReason     bool
	RequiresCategory   bool
	RequiresTechnician bool
}

type edgeKey struct {
	from entity.AppointmentStatus
	to   entity.AppointmentStatus
}

var edges = []Edge{
	{
		From: entity.AppointmentStatusPending, To: entity.AppointmentStatusConfirmed,
		Action: ActionConfirm, AuditAction: entity.AuditActionAppointmentConfirm,
		RequiresTechnician: true,
	},
	{
		From: entity.AppointmentStatusPending, To: entity.AppointmentStatusRejected,
		Action: ActionReject, AuditAction: entity.AuditActionAppointmentReject,
		RequiresReason: true,
	},
	{
		From: entity.AppointmentStatusPending, To: entity.AppointmentStatusCancelled,
		Action: ActionCancelPending, AuditAction: entity.AuditActionAppointmentCancel,
		RequiresReason: true, RequiresCategory: true,
	},
	{
		From: entity.AppointmentStatusConfirmed, To: entity.AppointmentStatusInProgress,
		Action: ActionStart, AuditAction: entity.AuditActionAppointmentStart,
	},
	{
		From: entity.AppointmentStatusConfirmed, To: entity.AppointmentStatusCancelled,
		Action: ActionCancelConfirmed, AuditAction: entity.AuditActionAppointmentCancel,
		RequiresReason: true, RequiresCategory: true,
	},
	{
		From: entity.AppointmentStatusInProgress, To: entity.AppointmentStatusCompleted,
		Action: ActionComplete, AuditAction: entity.AuditActionAppointmentComplete,
	},
	{
		From: entity.AppointmentStatusInProgress, To: entity.AppointmentStatusCancelled,
		Action: ActionCancelInProgress, AuditAction: entity.AuditActionAppointmentCancel,
		RequiresReason: true, RequiresCategory: true,
	},
}

var edgeIndex = func() map[edgeKey]Edge {
	index := make(map[edgeKey]Edge, len(edges))
	for _, e := range edges {
		index[edgeKey{e.From, e.To}] = e
	}
	return index
}()

// Edges returns a copy of the transition table
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// LookupEdge finds the edge between two statuses
func LookupEdge(from, to entity.AppointmentStatus) (Edge, bool) {
	e, ok := edgeIndex[edgeKey{from, to}]
	return e, ok
}

// TransitionInput is the auxiliary data supplied with a transition request
type TransitionInput struct {
	Target       entity.AppointmentStatus
	TechnicianID *uuid.UUID
	Reason       string
	Category     string
}

// Transition is a validated status change ready to be applied
type Transition struct {
	Edge         Edge
	ActorID      uuid.UUID
	TechnicianID *uuid.UUID
	Reason       string
	Category     string
}

// Plan validates a transition request against the current record.
//
// Checks, in order:
// 1. Target differs from the current status and an edge exists
// 2. Actor role (and ownership/assignment where scoped) is permitted on the edge
// 3. Required reason, category and technician are present
func Plan(current *entity.Appointment, actor Actor, in TransitionInput) (*Transition, error) {
	if current.Status == in.Target {
		return nil, fmt.Errorf("%w: appointment is already %s", ErrInvalidTransition, current.Status)
	}

	edge, ok := LookupEdge(current.Status, in.Target)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, in.Target)
	}

	if err := Permit(actor, edge.Action, current); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(in.Reason)
	category := strings.TrimSpace(in.Category)

	if edge.RequiresReason && reason == "" {
		return nil, fmt.Errorf("%w: reason is required to move to %s", ErrMissingField, edge.To)
	}
	if edge.RequiresCategory && category == "" {
		return nil, fmt.Errorf("%w: category is required to move to %s", ErrMissingField, edge.To)
	}
	if edge.RequiresTechnician && in.TechnicianID == nil && current.TechnicianID == nil {
		return nil, fmt.Errorf("%w: technician is required to move to %s", ErrMissingField, edge.To)
	}

	if edge.To == entity.AppointmentStatusRejected && category == "" {
		category = DefaultRejectionCategory
	}

	return &Transition{
		Edge:         edge,
		ActorID:      actor.ID,
		TechnicianID: in.TechnicianID,
		Reason:       reason,
		Category:     category,
	}, nil
}

// ApplyTo writes the transition onto the appointment record
func (t *Transition) ApplyTo(a *entity.Appointment) {
	a.Status = t.Edge.To

	if t.TechnicianID != nil {
		technicianID := *t.TechnicianID
		a.TechnicianID = &technicianID
	}

	switch t.Edge.To {
	case entity.AppointmentStatusCancelled:
		actorID := t.ActorID
		a.CancellationReason = t.Reason
		a.CancellationCategory = t.Category
		a.CancelledBy = &actorID
	case entity.AppointmentStatusRejected:
		actorID := t.ActorID
		a.RejectionReason = t.Reason
		a.CancellationReason = t.Reason
		a.CancellationCategory = t.Category
		a.CancelledBy = &actorID
	}
}

// AuditMetadata describes the transition for the audit trail
func (t *Transition) AuditMetadata() entity.JSON {
	metadata := entity.JSON{
		"from": string(t.Edge.From),
		"to":   string(t.Edge.To),
	}
	if t.Reason != "" {
		metadata["reason"] = t.Reason
	}
	if t.Category != "" {
		metadata["category"] = t.Category
	}
	if t.TechnicianID != nil {
		metadata["technician_id"] = t.TechnicianID.String()
	}
	return metadata
}

// CheckEditable guards schedule and technician edits
func CheckEditable(actor Actor, action Action, a *entity.Appointment) error {
	if err := Permit(actor, action, a); err != nil {
		return err
	}
	if a.Status.IsTerminal() {
		return fmt.Errorf("%w: %s appointments cannot be edited", ErrInvalidState, a.Status)
	}
	return nil
}

// CheckRatingEligibility guards review creation. Duplicate reviews are detected by the caller.
func CheckRatingEligibility(actor Actor, a *entity.Appointment) error {
	if err := Permit(actor, ActionRate, a); err != nil {
		return err
	}
	if !a.IsCompleted() {
		return fmt.Errorf("%w: only completed appointments can be rated", ErrInvalidState)
	}
	return nil
}

// CheckPurgeable guards permanent deletion of a single appointment
func CheckPurgeable(actor Actor, a *entity.Appointment) error {
	if err := Permit(actor, ActionPermanentDelete, a); err != nil {
		return err
	}
	if !a.MarkedForDeletion && !a.Status.IsTerminal() {
		return fmt.Errorf("%w: only deleted or closed appointments can be purged", ErrInvalidState)
	}
	return nil
}
