package validator

import (
	"testing"

	"repairdesk/internal/delivery/dto"
)

func TestAppointmentStatusTag(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		status string
		valid  bool
	}{
		{"Confirmed", true},
		{"in_progress", true},
		{"IN PROGRESS", true},
		{"in-progress", true},
		{"cancelled", true},
		{"Archived", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			err := v.Validate(&dto.TransitionRequest{Status: tt.status})
			if tt.valid && err != nil {
				t.Fatalf("expected %q to be valid, got %v", tt.status, err)
			}
			if !tt.valid && err == nil {
				t.Fatalf("expected %q to be rejected", tt.status)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&dto.CreateStaffRequest{
		Email:    "not-an-email",
		Password: "secret1",
		FullName: "Rina",
		Role:     "technician",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	got := v.FormatValidationErrors(err)
	want := map[string]string{
		"Email":          "Email must be a valid email address",
		"Specialization": "Specialization is required when Role technician",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), got)
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Fatalf("expected %s: %q, got %q", field, msg, got[field])
		}
	}

	err = v.Validate(&dto.CreateStaffRequest{
		Email:    "desk@example.com",
		Password: "secret1",
		FullName: "Rina",
		Role:     "admin",
	})
	if msg := v.FormatValidationErrors(err)["Role"]; msg != "Role must be one of: receptionist technician" {
		t.Fatalf("unexpected role message: %q", msg)
	}
}
