package workflow

import (
	"fmt"

	"repairdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// Actor is the authenticated identity issuing a request
type Actor struct {
	ID     uuid.UUID
	RoleID int
}

// Action is anything an actor may attempt on appointments
type Action string

const (
	ActionCreate             Action = "create"
	ActionConfirm            Action = "confirm"
	ActionReject             Action = "reject"
	ActionCancelPending      Action = "cancel-pending"
	ActionStart              Action = "start"
	ActionComplete           Action = "complete"
	ActionCancelConfirmed    Action = "cancel-confirmed"
	ActionCancelInProgress   Action = "cancel-in-progress"
	ActionUpdateSchedule     Action = "update-schedule"
	ActionReassignTechnician Action = "reassign-technician"
	ActionSoftDelete         Action = "soft-delete"
	ActionRestore            Action = "restore"
	ActionPermanentDelete    Action = "permanent-delete"
	ActionBulkDelete         Action = "bulk-delete"
	ActionEmptyRecycleBin    Action = "empty-recycle-bin"
	ActionViewRecycleBin     Action = "view-recycle-bin"
	ActionRate               Action = "rate"
	ActionViewAll            Action = "view-all"
	ActionViewAudit          Action = "view-audit"
)

// Actions lists every action known to the capability table
func Actions() []Action {
	return []Action{
		ActionCreate, ActionConfirm, ActionReject, ActionCancelPending,
		ActionStart, ActionComplete, ActionCancelConfirmed, ActionCancelInProgress,
		ActionUpdateSchedule, ActionReassignTechnician,
		ActionSoftDelete, ActionRestore, ActionPermanentDelete, ActionBulkDelete, ActionEmptyRecycleBin,
		ActionViewRecycleBin, ActionRate, ActionViewAll, ActionViewAudit,
	}
}

// Roles lists every role ID known to the capability table
func Roles() []int {
	return []int{entity.RoleIDAdmin, entity.RoleIDReceptionist, entity.RoleIDTechnician, entity.RoleIDCustomer}
}

// Grant is the answer of the capability table for a (role, action) pair
type Grant int

const (
	GrantDeny Grant = iota
	GrantAllow
	// GrantOwner allows the action only on appointments booked by the actor
	GrantOwner
	// GrantAssigned allows the action only on appointments assigned to the actor
	GrantAssigned
)

func (g Grant) String() string {
	switch g {
	case GrantAllow:
		return "allow"
	case GrantOwner:
		return "owner"
	case GrantAssigned:
		return "assigned"
	default:
		return "deny"
	}
}

// capabilities is the single source of truth for who may do what.
// Pairs missing from the table are denied.
var capabilities = map[int]map[Action]Grant{
	entity.RoleIDAdmin: {
		ActionCreate:             GrantAllow,
		ActionConfirm:            GrantAllow,
		ActionReject:             GrantAllow,
		ActionCancelPending:      GrantAllow,
		ActionStart:              GrantAllow,
		ActionComplete:           GrantAllow,
		ActionCancelConfirmed:    GrantAllow,
		ActionCancelInProgress:   GrantAllow,
		ActionUpdateSchedule:     GrantAllow,
		ActionReassignTechnician: GrantAllow,
		ActionSoftDelete:         GrantAllow,
		ActionRestore:            GrantAllow,
		ActionPermanentDelete:    GrantAllow,
		ActionBulkDelete:         GrantAllow,
		ActionEmptyRecycleBin:    GrantAllow,
		ActionViewRecycleBin:     GrantAllow,
		ActionViewAll:            GrantAllow,
		ActionViewAudit:          GrantAllow,
	},
	entity.RoleIDReceptionist: {
		ActionCreate:             GrantAllow,
		ActionConfirm:            GrantAllow,
		ActionReject:             GrantAllow,
		ActionCancelConfirmed:    GrantAllow,
		ActionCancelInProgress:   GrantAllow,
		ActionUpdateSchedule:     GrantAllow,
		ActionReassignTechnician: GrantAllow,
		ActionSoftDelete:         GrantAllow,
		ActionRestore:            GrantAllow,
		ActionViewRecycleBin:     GrantAllow,
		ActionViewAll:            GrantAllow,
	},
	entity.RoleIDTechnician: {
		ActionStart:    GrantAssigned,
		ActionComplete: GrantAssigned,
	},
	entity.RoleIDCustomer: {
		ActionCreate:          GrantOwner,
		ActionCancelPending:   GrantOwner,
		ActionCancelConfirmed: GrantOwner,
		ActionRate:            GrantOwner,
	},
}

// Authorize looks up the grant for a role and action
func Authorize(roleID int, action Action) Grant {
	if grant, ok := capabilities[roleID][action]; ok {
		return grant
	}
	return GrantDeny
}

// Permit resolves the grant for the actor against a concrete appointment.
// Scoped grants need the appointment; a nil appointment only passes GrantAllow.
func Permit(actor Actor, action Action, appointment *entity.Appointment) error {
	switch Authorize(actor.RoleID, action) {
	case GrantAllow:
		return nil
	case GrantOwner:
		if appointment != nil && appointment.IsOwnedBy(actor.ID) {
			return nil
		}
		return fmt.Errorf("%w: %s is limited to the appointment owner", ErrForbidden, action)
	case GrantAssigned:
		if appointment != nil && appointment.IsAssignedTo(actor.ID) {
			return nil
		}
		return fmt.Errorf("%w: %s is limited to the assigned technician", ErrForbidden, action)
	default:
		return fmt.Errorf("%w: role %q cannot %s", ErrForbidden, entity.RoleNameByID(actor.RoleID), action)
	}
}
