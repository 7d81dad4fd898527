package handler

import (
	"encoding/json"
	"net/http"

	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/usecase"
	"repairdesk/pkg/response"
	"repairdesk/pkg/validator"
)

type StaffHandler struct {
	staffUsecase  usecase.StaffUsecase
	ratingUsecase usecase.RatingUsecase
	validator     *validator.CustomValidator
}

func NewStaffHandler(staffUsecase usecase.StaffUsecase, ratingUsecase usecase.RatingUsecase, validator *validator.CustomValidator) *StaffHandler {
	return &StaffHandler{
		staffUsecase:  staffUsecase,
		ratingUsecase: ratingUsecase,
		validator:     validator,
	}
}

// CreateStaff creates a receptionist or technician account
// @Summary Create staff account
// @Tags Admin - Staff
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateStaffRequest true "Staff"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/staff [post]
func (h *StaffHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.staffUsecase.CreateStaff(r.Context(), actor.ID, &req)
	if err != nil {
		writeError(w, err, "Failed to create staff account")
		return
	}

	response.Success(w, http.StatusCreated, "Staff account created successfully", user)
}

// GetAllTechnicians lists technicians with their rating aggregates
// @Summary List technicians
// @Tags Admin - Staff
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/technicians [get]
func (h *StaffHandler) GetAllTechnicians(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.staffUsecase.GetAllTechnicians(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get technicians")
		return
	}

	response.Success(w, http.StatusOK, "Technicians retrieved successfully", technicians)
}

// GetTechnician returns one technician profile
// @Summary Get technician
// @Tags Admin - Staff
// @Security BearerAuth
// @Param id path string true "Technician user ID"
// @Success 200 {object} response.Response
// @Router /admin/technicians/{id} [get]
func (h *StaffHandler) GetTechnician(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidVar(w, r, "id", "technician")
	if !ok {
		return
	}

	technician, err := h.staffUsecase.GetTechnician(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get technician")
		return
	}

	response.Success(w, http.StatusOK, "Technician retrieved successfully", technician)
}

// GetTechnicianRating returns a technician's average rating
// @Summary Get technician rating
// @Tags Technicians
// @Security BearerAuth
// @Param id path string true "Technician user ID"
// @Success 200 {object} response.Response
// @Router /technicians/{id}/rating [get]
func (h *StaffHandler) GetTechnicianRating(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidVar(w, r, "id", "technician")
	if !ok {
		return
	}

	rating, err := h.ratingUsecase.GetTechnicianRating(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get technician rating")
		return
	}

	response.Success(w, http.StatusOK, "Technician rating retrieved successfully", rating)
}
