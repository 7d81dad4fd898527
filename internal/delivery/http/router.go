package http

import (
	"net/http"

	"repairdesk/internal/delivery/http/handler"
	"repairdesk/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	serviceHandler      *handler.ServiceHandler
	appointmentHandler  *handler.AppointmentHandler
	recycleBinHandler   *handler.RecycleBinHandler
	auditLogHandler     *handler.AuditLogHandler
	staffHandler        *handler.StaffHandler
	healthHandler       *handler.HealthHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	accessLogMiddleware *middleware.AccessLogMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	serviceHandler *handler.ServiceHandler,
	appointmentHandler *handler.AppointmentHandler,
	recycleBinHandler *handler.RecycleBinHandler,
	auditLogHandler *handler.AuditLogHandler,
	staffHandler *handler.StaffHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	accessLogMiddleware *middleware.AccessLogMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		serviceHandler:      serviceHandler,
		appointmentHandler:  appointmentHandler,
		recycleBinHandler:   recycleBinHandler,
		auditLogHandler:     auditLogHandler,
		staffHandler:        staffHandler,
		healthHandler:       healthHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		accessLogMiddleware: accessLogMiddleware,
	}
}

// Setup registers all routes and returns the instrumented root handler
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/ready", r.healthHandler.Ready).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Service catalog (public)
	api.HandleFunc("/services", r.serviceHandler.GetAllServices).Methods(http.MethodGet)
	api.HandleFunc("/services/{id:[0-9]+}", r.serviceHandler.GetService).Methods(http.MethodGet)

	// Authenticated routes; per-appointment permissions are decided by the workflow authorizer
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/appointments", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", r.appointmentHandler.GetAllAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.SoftDeleteAppointment).Methods(http.MethodDelete)
	protected.HandleFunc("/appointments/{id}/transitions", r.appointmentHandler.TransitionAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/schedule", r.appointmentHandler.UpdateSchedule).Methods(http.MethodPut)
	protected.HandleFunc("/appointments/{id}/technician", r.appointmentHandler.ReassignTechnician).Methods(http.MethodPut)
	protected.HandleFunc("/appointments/{id}/review", r.appointmentHandler.SubmitReview).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/restore", r.appointmentHandler.RestoreAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/recycle-bin", r.recycleBinHandler.GetRecycleBin).Methods(http.MethodGet)
	protected.HandleFunc("/technicians/{id}/rating", r.staffHandler.GetTechnicianRating).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Service management (admin)
	admin.HandleFunc("/services", r.serviceHandler.CreateService).Methods(http.MethodPost)
	admin.HandleFunc("/services", r.serviceHandler.GetAllServicesAdmin).Methods(http.MethodGet)
	admin.HandleFunc("/services/{id:[0-9]+}", r.serviceHandler.UpdateService).Methods(http.MethodPut)
	admin.HandleFunc("/services/{id:[0-9]+}", r.serviceHandler.DeleteService).Methods(http.MethodDelete)

	// Recycle bin (admin)
	admin.HandleFunc("/appointments/bulk-delete", r.recycleBinHandler.BulkDelete).Methods(http.MethodPost)
	admin.HandleFunc("/appointments/{id}", r.recycleBinHandler.PermanentDelete).Methods(http.MethodDelete)
	admin.HandleFunc("/recycle-bin", r.recycleBinHandler.EmptyRecycleBin).Methods(http.MethodDelete)

	// Audit logs (admin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Staff management (admin)
	admin.HandleFunc("/staff", r.staffHandler.CreateStaff).Methods(http.MethodPost)
	admin.HandleFunc("/technicians", r.staffHandler.GetAllTechnicians).Methods(http.MethodGet)
	admin.HandleFunc("/technicians/{id}", r.staffHandler.GetTechnician).Methods(http.MethodGet)

	r.router.Use(middleware.RequestID)
	r.router.Use(r.accessLogMiddleware.Handle)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return otelhttp.NewHandler(r.router, "repairdesk-api")
}
