package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/timesheet-management/api"
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/admin"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/employee"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/transport/middleware"
	"github.com/frahmantamala/timesheet-management/internal/transport/swagger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *auth.Handler
	Timesheet *timesheet.Handler
	Employee  *employee.Handler
	Admin     *admin.Handler
}

type Options struct {
	BasePath string
	Origins  []string

	// Contract enables request validation when set.
	Contract *openapi3.T

	Metrics        *middleware.Metrics
	MetricsPath    string
	MetricsHandler http.Handler
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) error {
	basePath := opts.BasePath
	if basePath == "" {
		basePath = "/api"
	}

	// Apply global middleware
	router.Use(middleware.CORS(opts.Origins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}
	if opts.Contract != nil {
		validator, err := middleware.OpenAPIValidator(opts.Contract, basePath, logger)
		if err != nil {
			return err
		}
		router.Use(validator)
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", swagger.SpecHandler(api.Spec))
	router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.MetricsHandler)
	}

	router.Route(basePath, func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/register", h.Auth.Register)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/timesheets", func(tr chi.Router) {
				tr.Get("/", h.Timesheet.List)
				tr.Post("/", h.Timesheet.Create)
				tr.Get("/export/csv", h.Timesheet.ExportCSV)
				tr.Get("/download-pdf", h.Timesheet.DownloadPDF)
				tr.Put("/{id}", h.Timesheet.Update)
				tr.Delete("/{id}", h.Timesheet.Delete)
			})

			pr.Route("/admin", func(ar chi.Router) {
				ar.Use(middleware.RequireRole(logger, internal.RoleAdmin))

				ar.Get("/dashboard", h.Admin.Dashboard)

				ar.Route("/employees", func(er chi.Router) {
					er.Get("/", h.Employee.List)
					er.Post("/", h.Employee.Create)
					er.Put("/{id}", h.Employee.Update)
					er.Delete("/{id}", h.Employee.Delete)
				})

				ar.Route("/timesheets", func(tr chi.Router) {
					tr.Get("/", h.Admin.ListTimesheets)
					tr.Get("/export/csv", h.Admin.Export)
					tr.Put("/{id}/review", h.Admin.Review)
				})
			})
		})
	})

	return nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
	})
}
