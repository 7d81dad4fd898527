package workflow

import (
	"errors"
	"math/rand"
	"testing"

	"repairdesk/internal/domain/entity"

	"github.com/google/uuid"
)

type statusPair struct {
	from entity.AppointmentStatus
	to   entity.AppointmentStatus
}

// allowedRoles restates the transition table independently of the implementation.
var allowedRoles = map[statusPair][]int{
	{entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed}:    {entity.RoleIDReceptionist, entity.RoleIDAdmin},
	{entity.AppointmentStatusPending, entity.AppointmentStatusRejected}:     {entity.RoleIDReceptionist, entity.RoleIDAdmin},
	{entity.AppointmentStatusPending, entity.AppointmentStatusCancelled}:    {entity.RoleIDCustomer, entity.RoleIDAdmin},
	{entity.AppointmentStatusConfirmed, entity.AppointmentStatusInProgress}: {entity.RoleIDTechnician, entity.RoleIDAdmin},
	{entity.AppointmentStatusConfirmed, entity.AppointmentStatusCancelled}:  {entity.RoleIDCustomer, entity.RoleIDReceptionist, entity.RoleIDAdmin},
	{entity.AppointmentStatusInProgress, entity.AppointmentStatusCompleted}: {entity.RoleIDTechnician, entity.RoleIDAdmin},
	{entity.AppointmentStatusInProgress, entity.AppointmentStatusCancelled}: {entity.RoleIDReceptionist, entity.RoleIDAdmin},
}

func roleListed(roles []int, roleID int) bool {
	for _, r := range roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// fixture builds an appointment in the given status where the actor owns it
// (customers) or is assigned to it (technicians) when involved is true.
func fixture(status entity.AppointmentStatus, actor Actor, involved bool) *entity.Appointment {
	customer := uuid.New()
	technician := uuid.New()
	if involved && actor.RoleID == entity.RoleIDCustomer {
		customer = actor.ID
	}
	if involved && actor.RoleID == entity.RoleIDTechnician {
		technician = actor.ID
	}
	return &entity.Appointment{
		ID:           uuid.New(),
		CustomerID:   customer,
		TechnicianID: &technician,
		Status:       status,
	}
}

func fullInput(to entity.AppointmentStatus) TransitionInput {
	in := TransitionInput{Target: to, Reason: "customer request", Category: "schedule"}
	if to == entity.AppointmentStatusConfirmed {
		technician := uuid.New()
		in.TechnicianID = &technician
	}
	return in
}

func TestPlanAcceptsExactlyTheTransitionTable(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := entity.AppointmentStatuses()
	roles := Roles()

	for i := 0; i < 5000; i++ {
		from := statuses[rng.Intn(len(statuses))]
		to := statuses[rng.Intn(len(statuses))]
		actor := Actor{ID: uuid.New(), RoleID: roles[rng.Intn(len(roles))]}
		involved := rng.Intn(4) != 0

		appt := fixture(from, actor, involved)
		_, err := Plan(appt, actor, fullInput(to))

		permitted, edgeExists := allowedRoles[statusPair{from, to}]
		scoped := actor.RoleID == entity.RoleIDCustomer || actor.RoleID == entity.RoleIDTechnician
		wantOK := edgeExists && roleListed(permitted, actor.RoleID) && (!scoped || involved)

		switch {
		case wantOK && err != nil:
			t.Fatalf("%s -> %s by %s (involved=%v): expected success, got %v",
				from, to, entity.RoleNameByID(actor.RoleID), involved, err)
		case !wantOK && err == nil:
			t.Fatalf("%s -> %s by %s (involved=%v): expected rejection",
				from, to, entity.RoleNameByID(actor.RoleID), involved)
		case !edgeExists && !errors.Is(err, ErrInvalidTransition):
			t.Fatalf("%s -> %s: expected ErrInvalidTransition, got %v", from, to, err)
		case edgeExists && !wantOK && !errors.Is(err, ErrForbidden):
			t.Fatalf("%s -> %s by %s: expected ErrForbidden, got %v", from, to, entity.RoleNameByID(actor.RoleID), err)
		}
	}
}

func TestPlanNeverLeavesTerminalState(t *testing.T) {
	admin := Actor{ID: uuid.New(), RoleID: entity.RoleIDAdmin}
	for _, from := range entity.AppointmentStatuses() {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range entity.AppointmentStatuses() {
			_, err := Plan(fixture(from, admin, true), admin, fullInput(to))
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("%s -> %s: expected ErrInvalidTransition, got %v", from, to, err)
			}
		}
	}
}

func TestPlanSameStatusIsInvalid(t *testing.T) {
	admin := Actor{ID: uuid.New(), RoleID: entity.RoleIDAdmin}
	appt := fixture(entity.AppointmentStatusConfirmed, admin, true)

	_, err := Plan(appt, admin, TransitionInput{Target: entity.AppointmentStatusConfirmed})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestPlanRequiredFields(t *testing.T) {
	admin := Actor{ID: uuid.New(), RoleID: entity.RoleIDAdmin}

	cases := []struct {
		name string
		from entity.AppointmentStatus
		in   TransitionInput
	}{
		{"cancel without reason", entity.AppointmentStatusPending,
			TransitionInput{Target: entity.AppointmentStatusCancelled, Category: "other"}},
		{"cancel without category", entity.AppointmentStatusConfirmed,
			TransitionInput{Target: entity.AppointmentStatusCancelled, Reason: "no longer needed"}},
		{"cancel with blank reason", entity.AppointmentStatusInProgress,
			TransitionInput{Target: entity.AppointmentStatusCancelled, Reason: "   ", Category: "other"}},
		{"reject without reason", entity.AppointmentStatusPending,
			TransitionInput{Target: entity.AppointmentStatusRejected}},
	}

	for _, tc := range cases {
		_, err := Plan(fixture(tc.from, admin, true), admin, tc.in)
		if !errors.Is(err, ErrMissingField) {
			t.Fatalf("%s: expected ErrMissingField, got %v", tc.name, err)
		}
	}
}

func TestPlanConfirmNeedsTechnician(t *testing.T) {
	receptionist := Actor{ID: uuid.New(), RoleID: entity.RoleIDReceptionist}
	appt := &entity.Appointment{ID: uuid.New(), CustomerID: uuid.New(), Status: entity.AppointmentStatusPending}

	_, err := Plan(appt, receptionist, TransitionInput{Target: entity.AppointmentStatusConfirmed})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}

	preassigned := uuid.New()
	appt.TechnicianID = &preassigned
	if _, err := Plan(appt, receptionist, TransitionInput{Target: entity.AppointmentStatusConfirmed}); err != nil {
		t.Fatalf("expected confirm with existing technician to pass, got %v", err)
	}
}

func TestPlanCarriesTechnicianOnAnyEdge(t *testing.T) {
	admin := Actor{ID: uuid.New(), RoleID: entity.RoleIDAdmin}
	replacement := uuid.New()

	for _, target := range []entity.AppointmentStatus{entity.AppointmentStatusInProgress, entity.AppointmentStatusCancelled} {
		appt := fixture(entity.AppointmentStatusConfirmed, admin, true)
		tr, err := Plan(appt, admin, TransitionInput{
			Target:       target,
			TechnicianID: &replacement,
			Reason:       "customer request",
			Category:     "schedule",
		})
		if err != nil {
			t.Fatalf("%s: expected technician to be accepted, got %v", target, err)
		}

		tr.ApplyTo(appt)
		if !appt.IsAssignedTo(replacement) {
			t.Fatalf("%s: expected technician %s, got %v", target, replacement, appt.TechnicianID)
		}
		if got := tr.AuditMetadata()["technician_id"]; got != replacement.String() {
			t.Fatalf("%s: expected audit technician_id %s, got %v", target, replacement, got)
		}
	}
}

func TestApplyToSetsLifecycleAnnotations(t *testing.T) {
	receptionist := Actor{ID: uuid.New(), RoleID: entity.RoleIDReceptionist}

	for _, to := range []entity.AppointmentStatus{entity.AppointmentStatusCancelled, entity.AppointmentStatusRejected} {
		from := entity.AppointmentStatusPending
		actor := receptionist
		if to == entity.AppointmentStatusCancelled {
			from = entity.AppointmentStatusConfirmed
		}

		appt := fixture(from, actor, true)
		tr, err := Plan(appt, actor, TransitionInput{Target: to, Reason: "parts unavailable"})
		if to == entity.AppointmentStatusCancelled {
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("expected category to be required for cancellation, got %v", err)
			}
			tr, err = Plan(appt, actor, TransitionInput{Target: to, Reason: "parts unavailable", Category: "inventory"})
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", to, err)
		}

		tr.ApplyTo(appt)

		if appt.Status != to {
			t.Fatalf("expected status %s, got %s", to, appt.Status)
		}
		if appt.CancellationReason == "" || appt.CancellationCategory == "" {
			t.Fatalf("%s: expected reason and category, got %q/%q", to, appt.CancellationReason, appt.CancellationCategory)
		}
		if appt.CancelledBy == nil || *appt.CancelledBy != actor.ID {
			t.Fatalf("%s: expected cancelled_by to be the actor", to)
		}
		if to == entity.AppointmentStatusRejected {
			if appt.RejectionReason != "parts unavailable" {
				t.Fatalf("expected rejection reason, got %q", appt.RejectionReason)
			}
			if appt.CancellationCategory != DefaultRejectionCategory {
				t.Fatalf("expected default category, got %q", appt.CancellationCategory)
			}
		}
	}
}

func TestCheckRatingEligibility(t *testing.T) {
	customer := Actor{ID: uuid.New(), RoleID: entity.RoleIDCustomer}
	appt := fixture(entity.AppointmentStatusInProgress, customer, true)

	if err := CheckRatingEligibility(customer, appt); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	appt.Status = entity.AppointmentStatusCompleted
	if err := CheckRatingEligibility(customer, appt); err != nil {
		t.Fatalf("expected eligible, got %v", err)
	}

	stranger := Actor{ID: uuid.New(), RoleID: entity.RoleIDCustomer}
	if err := CheckRatingEligibility(stranger, appt); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCheckEditableAndPurgeable(t *testing.T) {
	admin := Actor{ID: uuid.New(), RoleID: entity.RoleIDAdmin}
	appt := fixture(entity.AppointmentStatusCompleted, admin, true)

	if err := CheckEditable(admin, ActionUpdateSchedule, appt); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on terminal edit, got %v", err)
	}
	if err := CheckPurgeable(admin, appt); err != nil {
		t.Fatalf("expected terminal appointment to be purgeable, got %v", err)
	}

	appt.Status = entity.AppointmentStatusConfirmed
	if err := CheckPurgeable(admin, appt); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for active appointment, got %v", err)
	}
	appt.MarkedForDeletion = true
	if err := CheckPurgeable(admin, appt); err != nil {
		t.Fatalf("expected marked appointment to be purgeable, got %v", err)
	}
}
