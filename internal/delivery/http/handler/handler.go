package handler

import (
	"errors"
	"net/http"
	"strconv"

	"repairdesk/internal/delivery/http/middleware"
	"repairdesk/internal/domain/workflow"
	"repairdesk/internal/usecase"
	"repairdesk/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// writeError maps usecase and workflow errors onto HTTP statuses.
// Anything unrecognised is reported as a 500 with the fallback message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, workflow.ErrNotFound),
		errors.Is(err, usecase.ErrServiceNotFound),
		errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrTechnicianNotFound),
		errors.Is(err, usecase.ErrAuditLogNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, workflow.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, workflow.ErrConflict),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrInvalidState),
		errors.Is(err, usecase.ErrEmailAlreadyExists),
		errors.Is(err, usecase.ErrServiceNameExists),
		errors.Is(err, usecase.ErrServiceInUse):
		response.Conflict(w, err.Error())
	case errors.Is(err, workflow.ErrMissingField),
		errors.Is(err, usecase.ErrInvalidTechnician),
		errors.Is(err, usecase.ErrInvalidCustomer),
		errors.Is(err, usecase.ErrServiceUnavailable),
		errors.Is(err, usecase.ErrSchedulePast),
		errors.Is(err, usecase.ErrInvalidRating),
		errors.Is(err, usecase.ErrServicePriceNegative),
		errors.Is(err, usecase.ErrStaffRoleInvalid),
		errors.Is(err, usecase.ErrRoleNotFound):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidStatusFilter),
		errors.Is(err, usecase.ErrInvalidDateFormat):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenRevoked):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, usecase.ErrAccountDisabled):
		response.Forbidden(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

// actorFromRequest writes a 401 when the request carries no authenticated actor
func actorFromRequest(w http.ResponseWriter, r *http.Request) (workflow.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
	}
	return actor, ok
}

func uuidVar(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func intVar(w http.ResponseWriter, r *http.Request, name, label string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id < 1 {
		response.BadRequest(w, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

func pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// optionalUUID parses a query parameter; empty yields nil
func optionalUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
