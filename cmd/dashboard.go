package cmd

import (
	"context"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/screen"
	"github.com/spf13/cobra"
)

var dashboardSubmit bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the counters for your role, or submit today's timesheet",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		identity, err := a.requireIdentity()
		if err != nil {
			return err
		}

		d := screen.NewDashboard(identity, a.timesheets, a.admin, a.employees, a.logger)
		if dashboardSubmit {
			form := timesheetForm
			if form.Date == "" {
				form.Date = time.Now().Format(time.DateOnly)
			}
			_, err = d.Submit(ctx, form)
		} else {
			err = d.Load(ctx)
		}
		d.Render(cmd.OutOrStdout())
		return err
	}),
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardSubmit, "submit", false, "submit a timesheet from the dashboard")
	addTimesheetFormFlags(dashboardCmd.Flags())
}
