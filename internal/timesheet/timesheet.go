package timesheet

import (
	"encoding/json"
	"strings"
	"time"

	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"

	// statusApprovedAlias is what some servers send instead of accepted.
	statusApprovedAlias = "approved"
)

// ParseStatus normalises a wire status. Unknown values are kept as-is.
func ParseStatus(s string) Status {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == statusApprovedAlias {
		return StatusAccepted
	}
	return Status(s)
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// Owner is the employee a timesheet belongs to. The API sends it either as a
// bare id or as a populated object.
type Owner struct {
	ID         string `json:"_id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
}

func (o *Owner) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*o = Owner{ID: id}
		return nil
	}
	type plain Owner
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Owner(p)
	return nil
}

type Timesheet struct {
	ID            string     `json:"_id"`
	Date          string     `json:"date"`
	PlannedWork   string     `json:"plannedWork"`
	ActualWork    string     `json:"actualWork"`
	Remarks       string     `json:"remarks,omitempty"`
	Status        Status     `json:"status"`
	AdminComments string     `json:"adminComments,omitempty"`
	Employee      *Owner     `json:"employee,omitempty"`
	EmployeeName  string     `json:"employeeName,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// CanEdit reports whether the owner may still change the entry.
func (t Timesheet) CanEdit() bool {
	return t.Status == StatusPending || t.Status == StatusRejected
}

// CanReview reports whether an admin may accept or reject the entry.
func (t Timesheet) CanReview() bool {
	return t.Status == StatusPending
}

// Day returns the YYYY-MM-DD part of Date, which some servers send as a full
// timestamp.
func (t Timesheet) Day() string {
	if len(t.Date) > 10 {
		return t.Date[:10]
	}
	return t.Date
}

// OwnerName prefers the populated employee over the flattened name.
func (t Timesheet) OwnerName() string {
	if t.Employee != nil && t.Employee.Name != "" {
		return t.Employee.Name
	}
	return t.EmployeeName
}

// Record is a stored timesheet joined with its owner.
type Record struct {
	timesheetDatamodel.Timesheet `gorm:"embedded"`
	OwnerName                    string `gorm:"column:owner_name"`
	OwnerEmail                   string `gorm:"column:owner_email"`
	OwnerCode                    string `gorm:"column:owner_code"`
}

func FromRecord(r *Record) Timesheet {
	created := r.CreatedAt
	updated := r.UpdatedAt
	return Timesheet{
		ID:            r.ID,
		Date:          r.Date,
		PlannedWork:   r.PlannedWork,
		ActualWork:    r.ActualWork,
		Remarks:       r.Remarks,
		Status:        ParseStatus(r.Status),
		AdminComments: r.AdminComments,
		Employee: &Owner{
			ID:         r.EmployeeID,
			Name:       r.OwnerName,
			Email:      r.OwnerEmail,
			EmployeeID: r.OwnerCode,
		},
		EmployeeName: r.OwnerName,
		CreatedAt:    &created,
		UpdatedAt:    &updated,
	}
}

func FromRecords(records []Record) []Timesheet {
	out := make([]Timesheet, 0, len(records))
	for i := range records {
		out = append(out, FromRecord(&records[i]))
	}
	return out
}
