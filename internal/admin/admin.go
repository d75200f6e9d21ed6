// Package admin holds the review side of the workflow: the cross-employee
// timesheet list, review, export and the dashboard counters.
package admin

import "github.com/frahmantamala/timesheet-management/internal/timesheet"

// Stats are the admin dashboard counters.
type Stats struct {
	TotalTimesheets int `json:"totalTimesheets" db:"total_timesheets"`
	Pending         int `json:"pending" db:"pending"`
	Accepted        int `json:"accepted" db:"accepted"`
	Rejected        int `json:"rejected" db:"rejected"`
	TotalEmployees  int `json:"totalEmployees" db:"total_employees"`
}

// StatsFromTimesheets counts statuses locally. Used when the dashboard
// endpoint is unavailable.
func StatsFromTimesheets(items []timesheet.Timesheet, employees int) Stats {
	s := Stats{TotalTimesheets: len(items), TotalEmployees: employees}
	for _, t := range items {
		switch t.Status {
		case timesheet.StatusPending:
			s.Pending++
		case timesheet.StatusAccepted:
			s.Accepted++
		case timesheet.StatusRejected:
			s.Rejected++
		}
	}
	return s
}
