package handler

import (
	"encoding/json"
	"net/http"

	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/usecase"
	"repairdesk/pkg/response"
	"repairdesk/pkg/validator"
)

type RecycleBinHandler struct {
	recycleBinUsecase usecase.RecycleBinUsecase
	validator         *validator.CustomValidator
}

func NewRecycleBinHandler(recycleBinUsecase usecase.RecycleBinUsecase, validator *validator.CustomValidator) *RecycleBinHandler {
	return &RecycleBinHandler{
		recycleBinUsecase: recycleBinUsecase,
		validator:         validator,
	}
}

// GetRecycleBin lists appointments marked for deletion
// @Summary List recycle bin
// @Tags Recycle Bin
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /recycle-bin [get]
func (h *RecycleBinHandler) GetRecycleBin(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	page, limit := pagination(r)

	appointments, err := h.recycleBinUsecase.ListRecycleBin(r.Context(), actor, page, limit)
	if err != nil {
		writeError(w, err, "Failed to get recycle bin")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Recycle bin retrieved successfully", appointments.Appointments, response.NewMeta(page, limit, appointments.Total))
}

// PermanentDelete removes an appointment for good
// @Summary Permanently delete appointment
// @Tags Admin - Recycle Bin
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/appointments/{id} [delete]
func (h *RecycleBinHandler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "appointment")
	if !ok {
		return
	}

	if err := h.recycleBinUsecase.PermanentDelete(r.Context(), actor, id); err != nil {
		writeError(w, err, "Failed to delete appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment permanently deleted", nil)
}

// BulkDelete soft-deletes many appointments
// @Summary Bulk soft delete
// @Tags Admin - Recycle Bin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BulkDeleteRequest true "IDs"
// @Success 200 {object} response.Response
// @Router /admin/appointments/bulk-delete [post]
func (h *RecycleBinHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.recycleBinUsecase.BulkSoftDelete(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, "Failed to delete appointments")
		return
	}

	response.Success(w, http.StatusOK, "Bulk delete processed", result)
}

// EmptyRecycleBin purges every marked appointment
// @Summary Empty recycle bin
// @Tags Admin - Recycle Bin
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/recycle-bin [delete]
func (h *RecycleBinHandler) EmptyRecycleBin(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.recycleBinUsecase.EmptyRecycleBin(r.Context(), actor)
	if err != nil {
		writeError(w, err, "Failed to empty recycle bin")
		return
	}

	response.Success(w, http.StatusOK, "Recycle bin emptied", result)
}
