package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crescentvet/clinic-booking/internal/clinic"
	"github.com/crescentvet/clinic-booking/internal/identity"
)

type RouterConfig struct {
	Service   *clinic.Service
	Doctors   identity.DoctorDirectory
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Logger    *zap.Logger
	JWTSecret string
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Public directory data
	r.Get("/slots", listSlotsHandler())
	r.Get("/doctors", listDoctorsHandler(cfg.Service))

	r.Group(func(r chi.Router) {
		r.Use(identity.Authenticator(cfg.JWTSecret, cfg.Doctors))

		// Clients book and review their own appointments. Staff may book on
		// a client's behalf.
		r.Group(func(r chi.Router) {
			r.Use(identity.RequireRole(identity.RoleClient, identity.RoleStaff))
			r.Post("/appointments", createAppointmentHandler(cfg.Service))
		})
		r.Group(func(r chi.Router) {
			r.Use(identity.RequireRole(identity.RoleClient))
			r.Get("/my/appointments", myAppointmentsHandler(cfg.Service))
		})

		// Staff scheduling and administration
		r.Group(func(r chi.Router) {
			r.Use(identity.RequireRole(identity.RoleStaff))
			r.Get("/admin/appointments", listAppointmentsHandler(cfg.Service))
			r.Get("/admin/appointments/{code}", getAppointmentHandler(cfg.Service))
			r.Post("/admin/appointments/{code}/assign", assignAppointmentHandler(cfg.Service))
			r.Post("/admin/appointments/{code}/status", transitionAppointmentHandler(cfg.Service))
			r.Post("/admin/appointments/{code}/payment", paymentHandler(cfg.Service))
			r.Get("/admin/appointments/{code}/receipt", receiptHandler(cfg.Service))
			r.Get("/admin/export/appointments.csv", exportAppointmentsHandler(cfg.Service))
			r.Get("/admin/export/prescriptions.csv", exportPrescriptionsHandler(cfg.Service))
		})

		// Doctor clinical workflow
		r.Group(func(r chi.Router) {
			r.Use(identity.RequireRole(identity.RoleDoctor))
			r.Get("/doctor/schedule", doctorScheduleHandler(cfg.Service))
			r.Get("/doctor/appointments/{code}/prescription", getPrescriptionHandler(cfg.Service))
			r.Put("/doctor/appointments/{code}/prescription", savePrescriptionHandler(cfg.Service))
			r.Get("/doctor/reference/prescriptions", rxReferenceHandler())
		})
	})

	return r
}
