package screen

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/apiclient"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// AdminTimesheets lists every employee's timesheets with review and export.
type AdminTimesheets struct {
	base
	api    AdminAPI
	filter timesheet.Filter
	items  []timesheet.Timesheet
	loaded bool
}

func NewAdminTimesheets(api AdminAPI, logger *slog.Logger) *AdminTimesheets {
	return &AdminTimesheets{base: newBase(logger), api: api}
}

// Load fetches with filter and remembers it for the re-fetch after a review.
func (s *AdminTimesheets) Load(ctx context.Context, filter timesheet.Filter) error {
	s.filter = filter
	items, err := s.api.Timesheets(ctx, filter)
	if err != nil {
		s.items, s.loaded = nil, false
		return s.fail(ctx, "Failed to fetch timesheets", err)
	}
	s.items, s.loaded = items, true
	return nil
}

func (s *AdminTimesheets) Items() []timesheet.Timesheet {
	return s.items
}

func (s *AdminTimesheets) Approve(ctx context.Context, id string) (*timesheet.Timesheet, error) {
	if err := s.reviewable(ctx, id); err != nil {
		return nil, err
	}
	ts, err := s.api.Approve(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "Failed to review timesheet", err)
	}
	s.succeed("Timesheet accepted.")
	s.refresh(ctx)
	return ts, nil
}

// Reject attaches comments, which may be empty.
func (s *AdminTimesheets) Reject(ctx context.Context, id, comments string) (*timesheet.Timesheet, error) {
	if err := s.reviewable(ctx, id); err != nil {
		return nil, err
	}
	ts, err := s.api.Reject(ctx, id, comments)
	if err != nil {
		return nil, s.fail(ctx, "Failed to review timesheet", err)
	}
	s.succeed("Timesheet rejected.")
	s.refresh(ctx)
	return ts, nil
}

func (s *AdminTimesheets) Export(ctx context.Context, filter timesheet.Filter) (*apiclient.Blob, error) {
	blob, err := s.api.ExportCSV(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, "CSV download failed", err)
	}
	if blob.Filename == "" {
		blob.Filename = "timesheets.csv"
	}
	return blob, nil
}

func (s *AdminTimesheets) reviewable(ctx context.Context, id string) error {
	if !s.loaded {
		if err := s.Load(ctx, s.filter); err != nil {
			return err
		}
	}
	t, ok := find(s.items, id)
	if !ok {
		return s.fail(ctx, "Timesheet "+id, internal.ErrTimesheetNotFound)
	}
	if !t.CanReview() {
		return s.fail(ctx, "Cannot review timesheet", internal.ErrTimesheetNotReviewable)
	}
	return nil
}

func (s *AdminTimesheets) refresh(ctx context.Context) {
	items, err := s.api.Timesheets(ctx, s.filter)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to refresh timesheets", "error", err)
		return
	}
	s.items, s.loaded = items, true
}

func (s *AdminTimesheets) Render(w io.Writer) {
	heading(w, "All Timesheets")
	s.renderNotice(w)
	if !s.loaded {
		return
	}
	if len(s.items) == 0 {
		fmt.Fprintln(w, "No timesheets found.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tEMPLOYEE\tDATE\tPLANNED\tACTUAL\tSTATUS\tCOMMENTS\tACTIONS")
	for _, t := range s.items {
		actions := "-"
		if t.CanReview() {
			actions = "approve, reject"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, cell(t.OwnerName()), t.Day(),
			cell(t.PlannedWork), cell(t.ActualWork), statusLabel(t.Status), cell(t.AdminComments), actions)
	}
	_ = tw.Flush()
}
