package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/database"
	"github.com/frahmantamala/timesheet-management/internal/employee"
	employeepg "github.com/frahmantamala/timesheet-management/internal/employee/postgres"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	timesheetpg "github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with an admin, two employees and a few timesheets for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := cfg.Database.Validate(); err != nil {
			return fmt.Errorf("database config: %w", err)
		}
		lg := logger.LoggerWrapper()

		db, err := database.Open(cfg.Database, lg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
			return err
		}
		if clearData {
			if err := clearTables(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared existing timesheets and users")
		}

		employees := employee.NewService(employeepg.NewEmployeeRepository(db), cfg.Security.BCryptCost, lg)
		timesheets := timesheet.NewService(timesheetpg.NewTimesheetRepository(db), lg)

		accounts := []employee.Form{
			{Name: "Admin", Email: "admin@example.com", Password: "password", EmployeeID: "A-001", Department: "Management", Role: "admin"},
			{Name: "Fadhil", Email: "fadhil@example.com", Password: "password", EmployeeID: "E-001", Department: "Engineering", Role: "employee"},
			{Name: "Padil", Email: "padil@example.com", Password: "password", EmployeeID: "E-002", Department: "Operations", Role: "employee"},
		}

		seeded := make(map[string]*employee.Employee, len(accounts))
		for _, form := range accounts {
			e, err := employees.Create(ctx, form)
			if errors.Is(err, internal.ErrEmailTaken) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists; skipping\n", form.Email)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to seed %s: %w", form.Email, err)
			}
			seeded[form.Email] = e
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s user: %s\n", e.Role, e.Email)
		}

		admin, ok := seeded["admin@example.com"]
		fadhil, hasFadhil := seeded["fadhil@example.com"]
		if !ok || !hasFadhil {
			fmt.Fprintln(cmd.OutOrStdout(), "Accounts already present; timesheets not seeded")
			return nil
		}

		reviewer := internal.Principal{ID: admin.ID, Email: admin.Email, Name: admin.Name, Role: internal.RoleAdmin}
		owner := internal.Principal{ID: fadhil.ID, Email: fadhil.Email, Name: fadhil.Name, Role: internal.RoleEmployee}

		samples := []struct {
			form   timesheet.Form
			review string
		}{
			{timesheet.Form{Date: "2024-03-04", PlannedWork: "Sprint planning", ActualWork: "Sprint planning and backlog grooming"}, "accepted"},
			{timesheet.Form{Date: "2024-03-05", PlannedWork: "Build export endpoint", ActualWork: "Built CSV export", Remarks: "xlsx next"}, "rejected"},
			{timesheet.Form{Date: "2024-03-06", PlannedWork: "Write tests", ActualWork: "Wrote service tests"}, ""},
		}
		for _, s := range samples {
			ts, err := timesheets.Create(ctx, owner, s.form)
			if err != nil {
				return fmt.Errorf("failed to seed timesheet %s: %w", s.form.Date, err)
			}
			if s.review != "" {
				dto := timesheet.ReviewDTO{Status: s.review}
				if s.review == "rejected" {
					dto.AdminComments = "Please add more detail"
				}
				if _, err := timesheets.Review(ctx, reviewer, ts.ID, dto); err != nil {
					return fmt.Errorf("failed to review timesheet %s: %w", s.form.Date, err)
				}
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d timesheets for %s\n", len(samples), owner.Email)
		return nil
	},
}

func clearTables(db *gorm.DB) error {
	for _, table := range []string{"timesheets", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}
