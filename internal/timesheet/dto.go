package timesheet

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

// Form is the body of POST /timesheets and PUT /timesheets/{id}.
type Form struct {
	Date        string `json:"date"`
	PlannedWork string `json:"plannedWork"`
	ActualWork  string `json:"actualWork"`
	Remarks     string `json:"remarks"`
}

func (f Form) Validate() error {
	v := validation.NewValidator()
	v.Field("date", f.Date).Required().Date()
	v.Field("plannedWork", f.PlannedWork).Required().MaxLength(2000)
	v.Field("actualWork", f.ActualWork).Required().MaxLength(2000)
	v.Field("remarks", f.Remarks).MaxLength(2000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// RequireFields is the client-side check: required fields only, formats are
// left to the server.
func (f Form) RequireFields() error {
	v := validation.NewValidator()
	v.Field("date", f.Date).Required()
	v.Field("plannedWork", f.PlannedWork).Required()
	v.Field("actualWork", f.ActualWork).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// FormFrom pre-fills an edit form from an existing entry.
func FormFrom(t Timesheet) Form {
	return Form{
		Date:        t.Day(),
		PlannedWork: t.PlannedWork,
		ActualWork:  t.ActualWork,
		Remarks:     t.Remarks,
	}
}

// Patch is a partial edit. Nil fields keep their value and an empty string
// clears the field.
type Patch struct {
	Date        *string
	PlannedWork *string
	ActualWork  *string
	Remarks     *string
}

// Apply overlays the set fields of p.
func (f Form) Apply(p Patch) Form {
	if p.Date != nil {
		f.Date = *p.Date
	}
	if p.PlannedWork != nil {
		f.PlannedWork = *p.PlannedWork
	}
	if p.ActualWork != nil {
		f.ActualWork = *p.ActualWork
	}
	if p.Remarks != nil {
		f.Remarks = *p.Remarks
	}
	return f
}

// ReviewDTO is the body of PUT /admin/timesheets/{id}/review.
type ReviewDTO struct {
	Status        string `json:"status"`
	AdminComments string `json:"adminComments"`
}

func (d ReviewDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("status", string(ParseStatus(d.Status))).Required().
		OneOf(internal.ErrCodeInvalidStatus, string(StatusAccepted), string(StatusRejected))
	v.Field("adminComments", d.AdminComments).MaxLength(2000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Filter narrows the admin timesheet list and export.
type Filter struct {
	EmployeeID string
	StartDate  string
	EndDate    string
}

func (f Filter) Validate() error {
	v := validation.NewValidator()
	v.Field("startDate", f.StartDate).Date()
	v.Field("endDate", f.EndDate).Date()
	v.Field("endDate", f.EndDate).Custom(func(interface{}) *internal.AppError {
		if f.StartDate != "" && f.EndDate != "" && f.EndDate < f.StartDate {
			return internal.NewValidationFieldError("endDate", "endDate must not be before startDate", internal.ErrCodeInvalidDate)
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Values encodes the filter with the query names the API expects.
func (f Filter) Values() url.Values {
	q := url.Values{}
	if f.EmployeeID != "" {
		q.Set("employee", f.EmployeeID)
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	return q
}

func FilterFromQuery(q url.Values) Filter {
	return Filter{
		EmployeeID: strings.TrimSpace(q.Get("employee")),
		StartDate:  strings.TrimSpace(q.Get("startDate")),
		EndDate:    strings.TrimSpace(q.Get("endDate")),
	}
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}
