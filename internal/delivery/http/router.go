package http

import (
	"net/http"

	"dental-scheduling/internal/delivery/http/handler"
	"dental-scheduling/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	doctorHandler         *handler.DoctorHandler
	weeklyScheduleHandler *handler.WeeklyScheduleHandler
	appointmentHandler    *handler.AppointmentHandler
	auditLogHandler       *handler.AuditLogHandler
	authMiddleware        *middleware.AuthMiddleware
	corsMiddleware        *middleware.CORSMiddleware
	metricsHandler        http.Handler
}

func NewRouter(
	doctorHandler *handler.DoctorHandler,
	weeklyScheduleHandler *handler.WeeklyScheduleHandler,
	appointmentHandler *handler.AppointmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		doctorHandler:         doctorHandler,
		weeklyScheduleHandler: weeklyScheduleHandler,
		appointmentHandler:    appointmentHandler,
		auditLogHandler:       auditLogHandler,
		authMiddleware:        authMiddleware,
		corsMiddleware:        corsMiddleware,
		metricsHandler:        metricsHandler,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Authenticated routes (must stay after /admin)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	// Doctor directory for booking
	protected.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)

	// Weekly schedule
	protected.HandleFunc("/doctors/{doctorId}/weekly-schedule", r.weeklyScheduleHandler.GetWeeklySchedule).Methods(http.MethodGet)
	protected.Handle("/doctors/{doctorId}/weekly-schedule", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.weeklyScheduleHandler.SaveWeeklySchedule))).Methods(http.MethodPut)
	protected.Handle("/doctors/{doctorId}/weekly-schedule/preview", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.weeklyScheduleHandler.PreviewScheduleChange))).Methods(http.MethodPost)

	// Slots and appointments
	protected.HandleFunc("/doctors/{doctorId}/slots", r.appointmentHandler.GetAvailableSlots).Methods(http.MethodGet)
	protected.Handle("/doctors/{doctorId}/appointments", middleware.RequireStaff(http.HandlerFunc(r.appointmentHandler.ListDoctorAppointments))).Methods(http.MethodGet)
	protected.Handle("/appointments", middleware.RequireBooker(http.HandlerFunc(r.appointmentHandler.CreateAppointment))).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.Handle("/appointments/{id}/status", middleware.RequireStaff(http.HandlerFunc(r.appointmentHandler.UpdateAppointmentStatus))).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPost)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
