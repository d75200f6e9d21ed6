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

// TimesheetList is the employee's own timesheets with submit, edit, delete
// and export.
type TimesheetList struct {
	base
	api    TimesheetAPI
	items  []timesheet.Timesheet
	loaded bool
}

func NewTimesheetList(api TimesheetAPI, logger *slog.Logger) *TimesheetList {
	return &TimesheetList{base: newBase(logger), api: api}
}

func (s *TimesheetList) Load(ctx context.Context) error {
	items, err := s.api.List(ctx)
	if err != nil {
		s.items, s.loaded = nil, false
		return s.fail(ctx, "Failed to load timesheets", err)
	}
	s.items, s.loaded = items, true
	return nil
}

func (s *TimesheetList) Items() []timesheet.Timesheet {
	return s.items
}

// Find looks id up in the loaded list, loading it first if needed.
func (s *TimesheetList) Find(ctx context.Context, id string) (timesheet.Timesheet, error) {
	if !s.loaded {
		if err := s.Load(ctx); err != nil {
			return timesheet.Timesheet{}, err
		}
	}
	t, ok := find(s.items, id)
	if !ok {
		return timesheet.Timesheet{}, s.fail(ctx, "Timesheet "+id, internal.ErrTimesheetNotFound)
	}
	return t, nil
}

func (s *TimesheetList) Submit(ctx context.Context, form timesheet.Form) (*timesheet.Timesheet, error) {
	created, err := s.api.Create(ctx, form)
	if err != nil {
		return nil, s.fail(ctx, "Error submitting timesheet", err)
	}
	s.succeed("Timesheet submitted!")
	s.refresh(ctx)
	return created, nil
}

// Edit is refused locally unless the entry is still editable.
func (s *TimesheetList) Edit(ctx context.Context, id string, form timesheet.Form) (*timesheet.Timesheet, error) {
	current, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.CanEdit() {
		return nil, s.fail(ctx, "Cannot edit timesheet", internal.ErrTimesheetNotEditable)
	}

	updated, err := s.api.Update(ctx, id, form)
	if err != nil {
		return nil, s.fail(ctx, "Error updating timesheet", err)
	}
	s.succeed("Timesheet updated.")
	s.refresh(ctx)
	return updated, nil
}

func (s *TimesheetList) Delete(ctx context.Context, id string) error {
	current, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	if !current.CanEdit() {
		return s.fail(ctx, "Cannot delete timesheet", internal.ErrTimesheetNotEditable)
	}

	if err := s.api.Delete(ctx, id); err != nil {
		return s.fail(ctx, "Error deleting timesheet", err)
	}
	s.succeed("Timesheet deleted.")
	s.refresh(ctx)
	return nil
}

func (s *TimesheetList) ExportCSV(ctx context.Context) (*apiclient.Blob, error) {
	blob, err := s.api.ExportCSV(ctx)
	if err != nil {
		return nil, s.fail(ctx, "CSV download failed", err)
	}
	if blob.Filename == "" {
		blob.Filename = "timesheets.csv"
	}
	return blob, nil
}

func (s *TimesheetList) DownloadPDF(ctx context.Context) (*apiclient.Blob, error) {
	blob, err := s.api.DownloadPDF(ctx)
	if err != nil {
		return nil, s.fail(ctx, "PDF download failed", err)
	}
	if blob.Filename == "" {
		blob.Filename = "timesheets.pdf"
	}
	return blob, nil
}

// refresh re-fetches after a mutation. A failed re-fetch keeps the success
// notice of the mutation and only logs.
func (s *TimesheetList) refresh(ctx context.Context) {
	items, err := s.api.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to refresh timesheets", "error", err)
		return
	}
	s.items, s.loaded = items, true
}

func (s *TimesheetList) Render(w io.Writer) {
	heading(w, "My Timesheets")
	s.renderNotice(w)
	if !s.loaded {
		return
	}
	if len(s.items) == 0 {
		fmt.Fprintln(w, "No timesheets found.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tPLANNED\tACTUAL\tREMARKS\tADMIN COMMENTS\tACTIONS")
	for _, t := range s.items {
		actions := "-"
		if t.CanEdit() {
			actions = "edit, delete"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Day(), statusLabel(t.Status),
			cell(t.PlannedWork), cell(t.ActualWork), cell(t.Remarks), cell(t.AdminComments), actions)
	}
	_ = tw.Flush()
}
