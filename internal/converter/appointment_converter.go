package converter

import (
	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Relations are included only when preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:                   appointment.ID,
		Status:               string(appointment.Status),
		Customer:             dto.UserSummary{ID: appointment.CustomerID},
		ServiceID:            appointment.ServiceID,
		ScheduledAt:          appointment.ScheduledAt,
		ServiceAddress:       appointment.ServiceAddress,
		CustomerNotes:        appointment.CustomerNotes,
		CancellationReason:   appointment.CancellationReason,
		CancellationCategory: appointment.CancellationCategory,
		RejectionReason:      appointment.RejectionReason,
		CancelledBy:          appointment.CancelledBy,
		MarkedForDeletion:    appointment.MarkedForDeletion,
		MarkedForDeletionAt:  appointment.MarkedForDeletionAt,
		MarkedForDeletionBy:  appointment.MarkedForDeletionBy,
		Review:               ReviewToResponse(appointment.Review),
		CreatedAt:            appointment.CreatedAt,
		UpdatedAt:            appointment.UpdatedAt,
	}

	if appointment.Customer.ID == appointment.CustomerID {
		response.Customer = *UserToSummary(&appointment.Customer)
	}

	if appointment.Technician != nil {
		response.Technician = UserToSummary(appointment.Technician)
	} else if appointment.TechnicianID != nil {
		response.Technician = &dto.UserSummary{ID: *appointment.TechnicianID}
	}

	if appointment.Service.ID != 0 {
		response.Service = ServiceToResponse(&appointment.Service)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
