package screen

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/employee"
)

// AdminEmployees is account management.
type AdminEmployees struct {
	base
	api    EmployeeAPI
	items  []employee.Employee
	loaded bool
}

func NewAdminEmployees(api EmployeeAPI, logger *slog.Logger) *AdminEmployees {
	return &AdminEmployees{base: newBase(logger), api: api}
}

func (s *AdminEmployees) Load(ctx context.Context) error {
	items, err := s.api.List(ctx)
	if err != nil {
		s.items, s.loaded = nil, false
		return s.fail(ctx, "Failed to load employees", err)
	}
	s.items, s.loaded = items, true
	return nil
}

func (s *AdminEmployees) Items() []employee.Employee {
	return s.items
}

func (s *AdminEmployees) Find(ctx context.Context, id string) (employee.Employee, error) {
	if !s.loaded {
		if err := s.Load(ctx); err != nil {
			return employee.Employee{}, err
		}
	}
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, s.fail(ctx, "Employee "+id, internal.ErrEmployeeNotFound)
}

func (s *AdminEmployees) Create(ctx context.Context, form employee.Form) (*employee.Employee, error) {
	e, err := s.api.Create(ctx, form)
	if err != nil {
		return nil, s.fail(ctx, "Error creating employee", err)
	}
	s.succeed("Employee created.")
	s.refresh(ctx)
	return e, nil
}

func (s *AdminEmployees) Update(ctx context.Context, id string, form employee.Form) (*employee.Employee, error) {
	e, err := s.api.Update(ctx, id, form)
	if err != nil {
		return nil, s.fail(ctx, "Error updating employee", err)
	}
	s.succeed("Employee updated.")
	s.refresh(ctx)
	return e, nil
}

func (s *AdminEmployees) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return s.fail(ctx, "Error deleting employee", err)
	}
	s.succeed("Employee deleted.")
	s.refresh(ctx)
	return nil
}

func (s *AdminEmployees) refresh(ctx context.Context) {
	items, err := s.api.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to refresh employees", "error", err)
		return
	}
	s.items, s.loaded = items, true
}

func (s *AdminEmployees) Render(w io.Writer) {
	heading(w, "Employees")
	s.renderNotice(w)
	if !s.loaded {
		return
	}
	if len(s.items) == 0 {
		fmt.Fprintln(w, "No employees found.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tEMPLOYEE ID\tDEPARTMENT\tROLE\tSTATUS")
	for _, e := range s.items {
		status := "Active"
		if !e.IsActive {
			status = "Inactive"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, cell(e.Name), e.Email, cell(e.EmployeeID), cell(e.Department), e.Role, status)
	}
	_ = tw.Flush()
}
