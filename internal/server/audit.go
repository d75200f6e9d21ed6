package server

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal/core/events"
)

// subscribeAudit writes one log line per submission and review decision.
func subscribeAudit(bus *events.EventBus, logger *slog.Logger) {
	audit := logger.With("component", "audit")

	bus.Subscribe(events.EventTypeTimesheetSubmitted, func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(*events.TimesheetSubmittedEvent); ok {
			audit.InfoContext(ctx, "timesheet submitted",
				"event_id", ev.ID,
				"timesheet_id", ev.TimesheetID,
				"employee_id", ev.EmployeeID,
				"work_date", ev.WorkDate)
		}
		return nil
	})

	bus.Subscribe(events.EventTypeTimesheetReviewed, func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(*events.TimesheetReviewedEvent); ok {
			audit.InfoContext(ctx, "timesheet reviewed",
				"event_id", ev.ID,
				"timesheet_id", ev.TimesheetID,
				"employee_id", ev.EmployeeID,
				"reviewer_id", ev.ReviewerID,
				"status", ev.Status)
		}
		return nil
	})
}
