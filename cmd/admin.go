package cmd

import (
	"context"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/employee"
	"github.com/frahmantamala/timesheet-management/internal/export"
	"github.com/frahmantamala/timesheet-management/internal/screen"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	employeeForm   employee.Form
	employeeActive bool

	adminFilter    timesheet.Filter
	rejectComments string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Account management and timesheet review",
}

var adminEmployeesCmd = &cobra.Command{
	Use:     "employees",
	Aliases: []string{"employee"},
	Short:   "Manage accounts",
}

var adminEmployeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every account",
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		s := screen.NewAdminEmployees(a.employees, a.logger)
		err := s.Load(ctx)
		s.Render(cmd.OutOrStdout())
		return err
	}),
}

var adminEmployeesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		form := newEmployeeForm(cmd.Flags())
		if form.Role == "" {
			form.Role = string(internal.RoleEmployee)
		}

		s := screen.NewAdminEmployees(a.employees, a.logger)
		_, err := s.Create(ctx, form)
		s.Render(cmd.OutOrStdout())
		return err
	}),
}

var adminEmployeesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an account; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		s := screen.NewAdminEmployees(a.employees, a.logger)
		current, err := s.Find(ctx, args[0])
		if err != nil {
			s.Render(cmd.OutOrStdout())
			return err
		}

		form := employee.FormFrom(current).Apply(changedEmployeeForm(cmd.Flags()))
		_, err = s.Update(ctx, args[0], form)
		s.Render(cmd.OutOrStdout())
		return err
	}),
}

var adminEmployeesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account and its timesheets",
	Args:  cobra.ExactArgs(1),
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		s := screen.NewAdminEmployees(a.employees, a.logger)
		err := s.Delete(ctx, args[0])
		s.Render(cmd.OutOrStdout())
		return err
	}),
}

var adminTimesheetsCmd = &cobra.Command{
	Use:     "timesheets",
	Aliases: []string{"timesheet", "ts"},
	Short:   "Review every employee's timesheets",
}

var adminTimesheetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List timesheets, optionally filtered by employee and date range",
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		s := screen.NewAdminTimesheets(a.admin, a.logger)
		err := s.Load(ctx, adminFilter)
		s.Render(cmd.OutOrStdout())
		return err
	}),
}

var adminTimesheetsApproveCmd = &cobra.Command{
	Use:     "approve <id>",
	Aliases: []string{"accept"},
	Short:   "Accept a pending timesheet",
	Args:    cobra.ExactArgs(1),
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		s := screen.NewAdminTimesheets(a.admin, a.logger)
		_, err := s.Approve(ctx, args[0])
		s.Render(cmd.OutOrStdout())
		return err
	}),
}

var adminTimesheetsRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending timesheet",
	Args:  cobra.ExactArgs(1),
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		s := screen.NewAdminTimesheets(a.admin, a.logger)
		_, err := s.Reject(ctx, args[0], rejectComments)
		s.Render(cmd.OutOrStdout())
		return err
	}),
}

var adminTimesheetsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the filtered timesheets as csv or xlsx",
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		if format == export.FormatPDF {
			return export.ErrNotPDF
		}

		s := screen.NewAdminTimesheets(a.admin, a.logger)
		blob, err := s.Export(ctx, adminFilter)
		if err != nil {
			s.Render(cmd.OutOrStdout())
			return err
		}
		return saveExport(cmd, blob)
	}),
}

func withAdmin(fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		if _, err := a.requireIdentity(internal.RoleAdmin); err != nil {
			return err
		}
		return fn(ctx, cmd, a, args)
	})
}

// newEmployeeForm is the create body built from every account flag.
func newEmployeeForm(flags *pflag.FlagSet) employee.Form {
	form := employeeForm
	if flags.Changed("active") {
		active := employeeActive
		form.IsActive = &active
	}
	return form
}

// changedEmployeeForm keeps only the account fields whose flags were given.
func changedEmployeeForm(flags *pflag.FlagSet) employee.Patch {
	patch := employee.Patch{
		Name:       changedString(flags, "name", employeeForm.Name),
		Email:      changedString(flags, "email", employeeForm.Email),
		Password:   changedString(flags, "password", employeeForm.Password),
		EmployeeID: changedString(flags, "employee-id", employeeForm.EmployeeID),
		Department: changedString(flags, "department", employeeForm.Department),
		Role:       changedString(flags, "role", employeeForm.Role),
	}
	if flags.Changed("active") {
		active := employeeActive
		patch.IsActive = &active
	}
	return patch
}

func addEmployeeFormFlags(f *pflag.FlagSet) {
	f.StringVar(&employeeForm.Name, "name", "", "full name")
	f.StringVar(&employeeForm.Email, "email", "", "email")
	f.StringVar(&employeeForm.Password, "password", "", "password")
	f.StringVar(&employeeForm.EmployeeID, "employee-id", "", "employee id")
	f.StringVar(&employeeForm.Department, "department", "", "department")
	f.StringVar(&employeeForm.Role, "role", "", "employee or admin")
	f.BoolVar(&employeeActive, "active", true, "whether the account can sign in")
}

func addFilterFlags(f *pflag.FlagSet) {
	f.StringVar(&adminFilter.EmployeeID, "employee", "", "employee id to filter by")
	f.StringVar(&adminFilter.StartDate, "start", "", "first day, YYYY-MM-DD")
	f.StringVar(&adminFilter.EndDate, "end", "", "last day, YYYY-MM-DD")
}

func init() {
	addEmployeeFormFlags(adminEmployeesCreateCmd.Flags())
	addEmployeeFormFlags(adminEmployeesUpdateCmd.Flags())
	adminEmployeesCmd.AddCommand(adminEmployeesListCmd, adminEmployeesCreateCmd, adminEmployeesUpdateCmd, adminEmployeesDeleteCmd)

	addFilterFlags(adminTimesheetsListCmd.Flags())
	addFilterFlags(adminTimesheetsExportCmd.Flags())
	addExportFlags(adminTimesheetsExportCmd.Flags())
	adminTimesheetsRejectCmd.Flags().StringVarP(&rejectComments, "comments", "c", "", "comments for the employee")
	adminTimesheetsCmd.AddCommand(adminTimesheetsListCmd, adminTimesheetsApproveCmd, adminTimesheetsRejectCmd, adminTimesheetsExportCmd)

	adminCmd.AddCommand(adminEmployeesCmd, adminTimesheetsCmd)
}
