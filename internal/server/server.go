// Package server assembles the reference REST API from its repositories,
// services and handlers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/timesheet-management/api"
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/admin"
	adminpg "github.com/frahmantamala/timesheet-management/internal/admin/postgres"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	authpg "github.com/frahmantamala/timesheet-management/internal/auth/postgres"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/database"
	"github.com/frahmantamala/timesheet-management/internal/employee"
	employeepg "github.com/frahmantamala/timesheet-management/internal/employee/postgres"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	timesheetpg "github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/internal/transport/middleware"
	"github.com/frahmantamala/timesheet-management/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// New wires every route against gdb. A nil registry disables metrics even
// when the config enables them.
func New(ctx context.Context, cfg *internal.Config, gdb *gorm.DB, registry *prometheus.Registry, logger *slog.Logger) (http.Handler, error) {
	base := transport.NewBaseHandler(logger)

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	statsDB, err := database.SQLX(gdb, cfg.Database.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap database for sqlx: %w", err)
	}

	bus := events.NewEventBus(logger)
	subscribeAudit(bus, logger)

	employeeService := employee.NewService(employeepg.NewEmployeeRepository(gdb), cfg.Security.BCryptCost, logger)
	timesheetService := timesheet.NewService(timesheetpg.NewTimesheetRepository(gdb), logger).WithPublisher(bus)
	adminService := admin.NewService(timesheetService, adminpg.NewStatsRepository(statsDB), logger)
	authService := auth.NewService(
		authpg.NewRepository(gdb),
		auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration),
		employeeService,
		logger,
	)

	handlers := rest.Handlers{
		Health:    rest.NewHealthHandler(sqlDB),
		Auth:      auth.NewHandler(base, authService),
		Timesheet: timesheet.NewHandler(base, timesheetService),
		Employee:  employee.NewHandler(base, employeeService),
		Admin:     admin.NewHandler(base, adminService),
	}

	contract, err := api.Load(ctx)
	if err != nil {
		return nil, err
	}

	opts := rest.Options{
		BasePath: cfg.Server.BasePath,
		Origins:  cfg.Server.Origins(),
		Contract: contract,
	}
	if cfg.Metrics.Enabled && registry != nil {
		opts.Metrics = middleware.NewMetrics(registry)
		opts.MetricsPath = cfg.Metrics.Path
		opts.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	router := chi.NewRouter()
	if err := rest.RegisterAllRoutes(router, handlers, opts, logger); err != nil {
		return nil, err
	}
	return router, nil
}
