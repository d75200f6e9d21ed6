package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTimesheetSubmitted = "timesheet.submitted"
	EventTypeTimesheetReviewed  = "timesheet.reviewed"
)

type TimesheetSubmittedEvent struct {
	BaseEvent
	TimesheetID string `json:"timesheet_id"`
	EmployeeID  string `json:"employee_id"`
	WorkDate    string `json:"work_date"`
}

func NewTimesheetSubmittedEvent(timesheetID, employeeID, workDate string) *TimesheetSubmittedEvent {
	return &TimesheetSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTimesheetSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"timesheet_id": timesheetID,
				"employee_id":  employeeID,
				"work_date":    workDate,
			},
		},
		TimesheetID: timesheetID,
		EmployeeID:  employeeID,
		WorkDate:    workDate,
	}
}

type TimesheetReviewedEvent struct {
	BaseEvent
	TimesheetID   string `json:"timesheet_id"`
	EmployeeID    string `json:"employee_id"`
	ReviewerID    string `json:"reviewer_id"`
	Status        string `json:"status"`
	AdminComments string `json:"admin_comments"`
}

func NewTimesheetReviewedEvent(timesheetID, employeeID, reviewerID, status, comments string) *TimesheetReviewedEvent {
	return &TimesheetReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTimesheetReviewed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"timesheet_id":   timesheetID,
				"employee_id":    employeeID,
				"reviewer_id":    reviewerID,
				"status":         status,
				"admin_comments": comments,
			},
		},
		TimesheetID:   timesheetID,
		EmployeeID:    employeeID,
		ReviewerID:    reviewerID,
		Status:        status,
		AdminComments: comments,
	}
}
