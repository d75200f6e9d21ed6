package screen

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/admin"
	"github.com/frahmantamala/timesheet-management/internal/session"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// Dashboard shows the counters for the signed-in role. Employees count their
// own timesheets; admins read the dashboard endpoint and fall back to
// counting the admin lists when it is unavailable.
type Dashboard struct {
	base
	identity   session.Identity
	timesheets TimesheetAPI
	admin      AdminAPI
	employees  EmployeeAPI
	stats      admin.Stats
	loaded     bool
}

func NewDashboard(identity session.Identity, timesheets TimesheetAPI, adm AdminAPI, employees EmployeeAPI, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		base:       newBase(logger),
		identity:   identity,
		timesheets: timesheets,
		admin:      adm,
		employees:  employees,
	}
}

func (d *Dashboard) Stats() admin.Stats {
	return d.stats
}

func (d *Dashboard) Load(ctx context.Context) error {
	var (
		stats admin.Stats
		err   error
	)
	if d.identity.IsAdmin() {
		stats, err = d.adminStats(ctx)
	} else {
		stats, err = d.employeeStats(ctx)
	}
	if err != nil {
		d.loaded = false
		return d.fail(ctx, "Error fetching dashboard data", err)
	}
	d.stats, d.loaded = stats, true
	return nil
}

func (d *Dashboard) employeeStats(ctx context.Context) (admin.Stats, error) {
	items, err := d.timesheets.List(ctx)
	if err != nil {
		return admin.Stats{}, err
	}
	return admin.StatsFromTimesheets(items, 0), nil
}

func (d *Dashboard) adminStats(ctx context.Context) (admin.Stats, error) {
	stats, err := d.admin.Dashboard(ctx)
	if err == nil {
		return *stats, nil
	}
	d.logger.WarnContext(ctx, "dashboard endpoint failed, counting lists instead", "error", err)

	items, err := d.admin.Timesheets(ctx, timesheet.Filter{})
	if err != nil {
		return admin.Stats{}, err
	}
	employees, err := d.employees.List(ctx)
	if err != nil {
		return admin.Stats{}, err
	}
	count := 0
	for _, e := range employees {
		if e.Role != internal.RoleAdmin {
			count++
		}
	}
	return admin.StatsFromTimesheets(items, count), nil
}

// Submit is the employee quick action.
func (d *Dashboard) Submit(ctx context.Context, form timesheet.Form) (*timesheet.Timesheet, error) {
	if d.identity.IsAdmin() {
		return nil, d.fail(ctx, "Error submitting timesheet", internal.NewForbiddenError("Only employees submit timesheets", internal.ErrCodeUnauthorizedAccess))
	}
	created, err := d.timesheets.Create(ctx, form)
	if err != nil {
		return nil, d.fail(ctx, "Error submitting timesheet", err)
	}
	d.succeed("Timesheet submitted!")

	if stats, err := d.employeeStats(ctx); err != nil {
		d.logger.WarnContext(ctx, "failed to refresh dashboard", "error", err)
	} else {
		d.stats, d.loaded = stats, true
	}
	return created, nil
}

func (d *Dashboard) Render(w io.Writer) {
	heading(w, fmt.Sprintf("Welcome back, %s!", d.identity.Name))
	d.renderNotice(w)
	if !d.loaded {
		return
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Total Timesheets\t%d\n", d.stats.TotalTimesheets)
	fmt.Fprintf(tw, "Pending Reviews\t%d\n", d.stats.Pending)
	fmt.Fprintf(tw, "Accepted\t%d\n", d.stats.Accepted)
	fmt.Fprintf(tw, "Rejected\t%d\n", d.stats.Rejected)
	if d.identity.IsAdmin() {
		fmt.Fprintf(tw, "Total Employees\t%d\n", d.stats.TotalEmployees)
	}
	_ = tw.Flush()

	if !d.identity.IsAdmin() {
		fmt.Fprintln(w, "Quick action: timesheet dashboard --submit --date YYYY-MM-DD --planned ... --actual ...")
	}
}
