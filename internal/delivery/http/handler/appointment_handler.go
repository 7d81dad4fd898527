package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/usecase"
	"repairdesk/pkg/response"
	"repairdesk/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	ratingUsecase      usecase.RatingUsecase
	recycleBinUsecase  usecase.RecycleBinUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(
	appointmentUsecase usecase.AppointmentUsecase,
	ratingUsecase usecase.RatingUsecase,
	recycleBinUsecase usecase.RecycleBinUsecase,
	validator *validator.CustomValidator,
) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		ratingUsecase:      ratingUsecase,
		recycleBinUsecase:  recycleBinUsecase,
		validator:          validator,
	}
}

// CreateAppointment books a repair visit
// @Summary Create appointment
// @Description Customers book for themselves; staff create walk-in bookings with customer_id
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Appointment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

// GetAllAppointments lists appointments visible to the caller
// @Summary List appointments
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param status query string false "Status (any casing)"
// @Param date query string false "Scheduled day (YYYY-MM-DD)"
// @Param customer_id query string false "Customer ID"
// @Param technician_id query string false "Technician ID"
// @Param service_id query int false "Service ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /appointments [get]
func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	page, limit := pagination(r)
	query := dto.ListAppointmentsQuery{
		Status: r.URL.Query().Get("status"),
		Date:   r.URL.Query().Get("date"),
		Page:   page,
		Limit:  limit,
	}

	var err error
	if query.CustomerID, err = optionalUUID(r, "customer_id"); err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}
	if query.TechnicianID, err = optionalUUID(r, "technician_id"); err != nil {
		response.BadRequest(w, "Invalid technician ID")
		return
	}
	if raw := r.URL.Query().Get("service_id"); raw != "" {
		if query.ServiceID, err = strconv.Atoi(raw); err != nil || query.ServiceID < 1 {
			response.BadRequest(w, "Invalid service ID")
			return
		}
	}

	appointments, err := h.appointmentUsecase.ListAppointments(r.Context(), actor, &query)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully", appointments.Appointments, response.NewMeta(page, limit, appointments.Total))
}

// GetAppointment returns one appointment
// @Summary Get appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), actor, id)
	if err != nil {
		writeError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// TransitionAppointment requests a status change
// @Summary Change appointment status
// @Description Confirm, reject, start, complete or cancel an appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.TransitionRequest true "Transition"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /appointments/{id}/transitions [post]
func (h *AppointmentHandler) TransitionAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.RequestTransition(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, err, "Failed to update appointment status")
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appointment)
}

// UpdateSchedule moves an active appointment to a new time
// @Summary Reschedule appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.UpdateScheduleRequest true "Schedule"
// @Success 200 {object} response.Response
// @Router /appointments/{id}/schedule [put]
func (h *AppointmentHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.UpdateSchedule(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, err, "Failed to update schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule updated successfully", appointment)
}

// ReassignTechnician hands an active appointment to another technician
// @Summary Reassign technician
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.ReassignTechnicianRequest true "Technician"
// @Success 200 {object} response.Response
// @Router /appointments/{id}/technician [put]
func (h *AppointmentHandler) ReassignTechnician(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.ReassignTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.ReassignTechnician(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, err, "Failed to reassign technician")
		return
	}

	response.Success(w, http.StatusOK, "Technician reassigned successfully", appointment)
}

// SubmitReview rates a completed appointment
// @Summary Rate appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.SubmitReviewRequest true "Review"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments/{id}/review [post]
func (h *AppointmentHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	review, err := h.ratingUsecase.SubmitRating(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, err, "Failed to submit review")
		return
	}

	response.Success(w, http.StatusCreated, "Review submitted successfully", review)
}

// SoftDeleteAppointment moves an appointment to the recycle bin
// @Summary Soft delete appointment
// @Tags Appointments
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) SoftDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "appointment")
	if !ok {
		return
	}

	if err := h.recycleBinUsecase.SoftDelete(r.Context(), actor, id); err != nil {
		writeError(w, err, "Failed to delete appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment moved to recycle bin", nil)
}

// RestoreAppointment takes an appointment out of the recycle bin
// @Summary Restore appointment
// @Tags Appointments
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Router /appointments/{id}/restore [post]
func (h *AppointmentHandler) RestoreAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.recycleBinUsecase.Restore(r.Context(), actor, id)
	if err != nil {
		writeError(w, err, "Failed to restore appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment restored successfully", appointment)
}
