package workflow

import (
	"errors"
	"testing"

	"repairdesk/internal/domain/entity"

	"github.com/google/uuid"
)

func TestAuthorizeTableIsTotal(t *testing.T) {
	want := map[Action][4]Grant{
		//                        admin       receptionist technician     customer
		ActionCreate:             {GrantAllow, GrantAllow, GrantDeny, GrantOwner},
		ActionConfirm:            {GrantAllow, GrantAllow, GrantDeny, GrantDeny},
		ActionReject:             {GrantAllow, GrantAllow, GrantDeny, GrantDeny},
		ActionCancelPending:      {GrantAllow, GrantDeny, GrantDeny, GrantOwner},
		ActionStart:              {GrantAllow, GrantDeny, GrantAssigned, GrantDeny},
		ActionComplete:           {GrantAllow, GrantDeny, GrantAssigned, GrantDeny},
		ActionCancelConfirmed:    {GrantAllow, GrantAllow, GrantDeny, GrantOwner},
		ActionCancelInProgress:   {GrantAllow, GrantAllow, GrantDeny, GrantDeny},
		ActionUpdateSchedule:     {GrantAllow, GrantAllow, GrantDeny, GrantDeny},
		ActionReassignTechnician: {GrantAllow, GrantAllow, GrantDeny, GrantDeny},
		ActionSoftDelete:         {GrantAllow, GrantAllow, GrantDeny, GrantDeny},
		ActionRestore:            {GrantAllow, GrantAllow, GrantDeny, GrantDeny},
		ActionPermanentDelete:    {GrantAllow, GrantDeny, GrantDeny, GrantDeny},
		ActionBulkDelete:         {GrantAllow, GrantDeny, GrantDeny, GrantDeny},
		ActionEmptyRecycleBin:    {GrantAllow, GrantDeny, GrantDeny, GrantDeny},
		ActionViewRecycleBin:     {GrantAllow, GrantAllow, GrantDeny, GrantDeny},
		ActionRate:               {GrantDeny, GrantDeny, GrantDeny, GrantOwner},
		ActionViewAll:            {GrantAllow, GrantAllow, GrantDeny, GrantDeny},
		ActionViewAudit:          {GrantAllow, GrantDeny, GrantDeny, GrantDeny},
	}

	if len(want) != len(Actions()) {
		t.Fatalf("expected %d actions in table, got %d", len(Actions()), len(want))
	}

	for _, action := range Actions() {
		grants, ok := want[action]
		if !ok {
			t.Fatalf("action %s missing from expectations", action)
		}
		for i, roleID := range Roles() {
			if got := Authorize(roleID, action); got != grants[i] {
				t.Fatalf("%s/%s: expected %s, got %s", entity.RoleNameByID(roleID), action, grants[i], got)
			}
		}
	}
}

func TestAuthorizeUnknownRoleIsDenied(t *testing.T) {
	for _, action := range Actions() {
		if got := Authorize(99, action); got != GrantDeny {
			t.Fatalf("unknown role on %s: expected deny, got %s", action, got)
		}
	}
	if got := Authorize(entity.RoleIDAdmin, Action("launch-rocket")); got != GrantDeny {
		t.Fatalf("unknown action: expected deny, got %s", got)
	}
}

func TestPermitScopedGrants(t *testing.T) {
	customer := uuid.New()
	technician := uuid.New()
	other := uuid.New()
	appt := &entity.Appointment{CustomerID: customer, TechnicianID: &technician}

	cases := []struct {
		name   string
		actor  Actor
		action Action
		appt   *entity.Appointment
		ok     bool
	}{
		{"owner cancels", Actor{customer, entity.RoleIDCustomer}, ActionCancelPending, appt, true},
		{"stranger cancels", Actor{other, entity.RoleIDCustomer}, ActionCancelPending, appt, false},
		{"assigned starts", Actor{technician, entity.RoleIDTechnician}, ActionStart, appt, true},
		{"unassigned starts", Actor{other, entity.RoleIDTechnician}, ActionStart, appt, false},
		{"owner without record", Actor{customer, entity.RoleIDCustomer}, ActionRate, nil, false},
		{"admin without record", Actor{other, entity.RoleIDAdmin}, ActionEmptyRecycleBin, nil, true},
		{"receptionist bulk delete", Actor{other, entity.RoleIDReceptionist}, ActionBulkDelete, nil, false},
	}

	for _, tc := range cases {
		err := Permit(tc.actor, tc.action, tc.appt)
		if tc.ok && err != nil {
			t.Fatalf("%s: expected allow, got %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", tc.name, err)
		}
	}
}
