package timesheet

import (
	"bytes"
	"encoding/csv"
)

const CSVContentType = "text/csv"

var (
	employeeCSVHeader = []string{"Date", "Planned Work", "Actual Work", "Remarks", "Status", "Admin Comments"}
	adminCSVHeader    = []string{"Date", "Employee", "Employee ID", "Email", "Planned Work", "Actual Work", "Remarks", "Status", "Admin Comments"}
)

// EncodeCSV renders timesheets as CSV. withOwner adds the employee columns
// used by the admin export.
func EncodeCSV(items []Timesheet, withOwner bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := employeeCSVHeader
	if withOwner {
		header = adminCSVHeader
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, t := range items {
		var row []string
		if withOwner {
			owner := Owner{}
			if t.Employee != nil {
				owner = *t.Employee
			}
			row = []string{t.Day(), t.OwnerName(), owner.EmployeeID, owner.Email,
				t.PlannedWork, t.ActualWork, t.Remarks, string(t.Status), t.AdminComments}
		} else {
			row = []string{t.Day(), t.PlannedWork, t.ActualWork, t.Remarks, string(t.Status), t.AdminComments}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
