// Package view decides which screens a role can reach.
package view

import (
	"fmt"

	"github.com/frahmantamala/timesheet-management/internal"
)

type Tab string

const (
	TabDashboard  Tab = "dashboard"
	TabTimesheets Tab = "timesheets"
	TabEmployees  Tab = "employees"
)

// Screen identifies the concrete screen behind a tab for a role.
type Screen string

const (
	ScreenEmployeeDashboard Screen = "employee-dashboard"
	ScreenAdminDashboard    Screen = "admin-dashboard"
	ScreenTimesheetList     Screen = "timesheet-list"
	ScreenAdminTimesheets   Screen = "admin-timesheets"
	ScreenAdminEmployees    Screen = "admin-employees"
)

var ErrTabNotAllowed = internal.NewForbiddenError("Tab is not available for this role", internal.ErrCodeUnauthorizedAccess)

// TabsFor lists the tabs of role in display order. Unknown roles get the
// employee tabs.
func TabsFor(role internal.Role) []Tab {
	if role == internal.RoleAdmin {
		return []Tab{TabDashboard, TabEmployees, TabTimesheets}
	}
	return []Tab{TabDashboard, TabTimesheets}
}

type Router struct {
	role    internal.Role
	current Tab
}

func NewRouter(role internal.Role) *Router {
	return &Router{role: role, current: TabDashboard}
}

func (r *Router) Role() internal.Role {
	return r.role
}

func (r *Router) Tabs() []Tab {
	return TabsFor(r.role)
}

func (r *Router) Current() Tab {
	return r.current
}

func (r *Router) Allows(tab Tab) bool {
	for _, t := range r.Tabs() {
		if t == tab {
			return true
		}
	}
	return false
}

// Select switches the current tab. The current tab is unchanged on error.
func (r *Router) Select(tab Tab) error {
	if !r.Allows(tab) {
		return fmt.Errorf("%w: %q (role %s)", ErrTabNotAllowed, tab, r.role)
	}
	r.current = tab
	return nil
}

// Resolve maps the current tab to the screen that renders it.
func (r *Router) Resolve() Screen {
	admin := r.role == internal.RoleAdmin
	switch r.current {
	case TabEmployees:
		return ScreenAdminEmployees
	case TabTimesheets:
		if admin {
			return ScreenAdminTimesheets
		}
		return ScreenTimesheetList
	default:
		if admin {
			return ScreenAdminDashboard
		}
		return ScreenEmployeeDashboard
	}
}

// ParseTab accepts a tab name as typed on the command line.
func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabDashboard, TabTimesheets, TabEmployees:
		return Tab(s), nil
	}
	return "", internal.NewValidationError(fmt.Sprintf("unknown tab %q", s), internal.ErrCodeValidationFailed)
}
