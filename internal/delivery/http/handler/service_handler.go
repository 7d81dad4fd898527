package handler

import (
	"encoding/json"
	"net/http"

	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/usecase"
	"repairdesk/pkg/response"
	"repairdesk/pkg/validator"
)

type ServiceHandler struct {
	serviceUsecase usecase.ServiceCatalogUsecase
	validator      *validator.CustomValidator
}

func NewServiceHandler(serviceUsecase usecase.ServiceCatalogUsecase, validator *validator.CustomValidator) *ServiceHandler {
	return &ServiceHandler{
		serviceUsecase: serviceUsecase,
		validator:      validator,
	}
}

// GetAllServices lists bookable services
// @Summary List services
// @Tags Services
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /services [get]
func (h *ServiceHandler) GetAllServices(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// GetAllServicesAdmin lists the whole catalog including inactive services
// @Summary List all services
// @Tags Admin - Services
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/services [get]
func (h *ServiceHandler) GetAllServicesAdmin(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *ServiceHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	page, limit := pagination(r)

	services, err := h.serviceUsecase.GetAll(r.Context(), activeOnly, page, limit)
	if err != nil {
		writeError(w, err, "Failed to get services")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Services retrieved successfully", services.Services, response.NewMeta(page, limit, services.Total))
}

// GetService returns one service
// @Summary Get service
// @Tags Services
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /services/{id} [get]
func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(w, r, "id", "service")
	if !ok {
		return
	}

	svc, err := h.serviceUsecase.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get service")
		return
	}

	response.Success(w, http.StatusOK, "Service retrieved successfully", svc)
}

// CreateService adds a service to the catalog
// @Summary Create service
// @Tags Admin - Services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateServiceRequest true "Service"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/services [post]
func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	svc, err := h.serviceUsecase.Create(r.Context(), actor.ID, &req)
	if err != nil {
		writeError(w, err, "Failed to create service")
		return
	}

	response.Success(w, http.StatusCreated, "Service created successfully", svc)
}

// UpdateService replaces a service's details
// @Summary Update service
// @Tags Admin - Services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Param request body dto.UpdateServiceRequest true "Service"
// @Success 200 {object} response.Response
// @Router /admin/services/{id} [put]
func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id", "service")
	if !ok {
		return
	}

	var req dto.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	svc, err := h.serviceUsecase.Update(r.Context(), actor.ID, id, &req)
	if err != nil {
		writeError(w, err, "Failed to update service")
		return
	}

	response.Success(w, http.StatusOK, "Service updated successfully", svc)
}

// DeleteService removes a service that no appointment references
// @Summary Delete service
// @Tags Admin - Services
// @Security BearerAuth
// @Param id path int true "Service ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/services/{id} [delete]
func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id", "service")
	if !ok {
		return
	}

	if err := h.serviceUsecase.Delete(r.Context(), actor.ID, id); err != nil {
		writeError(w, err, "Failed to delete service")
		return
	}

	response.Success(w, http.StatusOK, "Service deleted successfully", nil)
}
