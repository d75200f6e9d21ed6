package timesheet

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/google/uuid"
)

// Repository defines the data access methods for timesheets
type Repository interface {
	Create(ctx context.Context, ts *timesheetDatamodel.Timesheet) error
	GetByID(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter Filter) ([]Record, error)
	// UpdateContent and Delete fail with ErrTimesheetNotEditable and Review
	// with ErrTimesheetNotReviewable when the stored status no longer allows
	// the write.
	UpdateContent(ctx context.Context, ts *timesheetDatamodel.Timesheet) error
	Review(ctx context.Context, ts *timesheetDatamodel.Timesheet) error
	Delete(ctx context.Context, id string) error
}

// Service is the server side of the timesheet workflow. Every mutation
// re-checks ownership and status regardless of what the client showed.
type Service struct {
	repo   Repository
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// WithPublisher announces submissions and reviews on p.
func (s *Service) WithPublisher(p events.Publisher) *Service {
	s.events = p
	return s
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

// ListOwn returns the caller's timesheets, newest date first.
func (s *Service) ListOwn(ctx context.Context, p internal.Principal) ([]Timesheet, error) {
	records, err := s.repo.List(ctx, Filter{EmployeeID: p.ID})
	if err != nil {
		s.logger.Error("failed to list timesheets", "error", err, "user_id", p.ID)
		return nil, internal.NewInternalError("failed to list timesheets", err)
	}
	return FromRecords(records), nil
}

func (s *Service) Create(ctx context.Context, p internal.Principal, form Form) (*Timesheet, error) {
	if err := form.Validate(); err != nil {
		s.logger.Debug("timesheet validation failed", "error", err, "user_id", p.ID)
		return nil, err
	}

	ts := &timesheetDatamodel.Timesheet{
		ID:          uuid.NewString(),
		EmployeeID:  p.ID,
		Date:        form.Date,
		PlannedWork: form.PlannedWork,
		ActualWork:  form.ActualWork,
		Remarks:     form.Remarks,
		Status:      string(StatusPending),
	}
	if err := s.repo.Create(ctx, ts); err != nil {
		s.logger.Error("failed to create timesheet", "error", err, "user_id", p.ID)
		return nil, internal.NewInternalError("failed to create timesheet", err)
	}

	s.logger.Info("timesheet created",
		"timesheet_id", ts.ID,
		"user_id", p.ID,
		"date", ts.Date)
	s.publish(ctx, events.NewTimesheetSubmittedEvent(ts.ID, p.ID, ts.Date))

	return s.get(ctx, ts.ID)
}

// Update rewrites the content of an owned, editable timesheet. The status is
// left untouched.
func (s *Service) Update(ctx context.Context, p internal.Principal, id string, form Form) (*Timesheet, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	record, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !FromRecord(record).CanEdit() {
		s.logger.Warn("timesheet not editable",
			"timesheet_id", id,
			"user_id", p.ID,
			"status", record.Status)
		return nil, internal.ErrTimesheetNotEditable
	}

	ts := record.Timesheet
	ts.Date = form.Date
	ts.PlannedWork = form.PlannedWork
	ts.ActualWork = form.ActualWork
	ts.Remarks = form.Remarks
	if err := s.repo.UpdateContent(ctx, &ts); err != nil {
		if isWorkflowError(err) {
			s.logger.Warn("timesheet changed before update", "timesheet_id", id, "error", err)
			return nil, err
		}
		s.logger.Error("failed to update timesheet", "error", err, "timesheet_id", id)
		return nil, internal.NewInternalError("failed to update timesheet", err)
	}

	s.logger.Info("timesheet updated", "timesheet_id", id, "user_id", p.ID)
	return s.get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, p internal.Principal, id string) error {
	record, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}
	if !FromRecord(record).CanEdit() {
		return internal.ErrTimesheetNotEditable
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isWorkflowError(err) {
			s.logger.Warn("timesheet changed before delete", "timesheet_id", id, "error", err)
			return err
		}
		s.logger.Error("failed to delete timesheet", "error", err, "timesheet_id", id)
		return internal.NewInternalError("failed to delete timesheet", err)
	}

	s.logger.Info("timesheet deleted", "timesheet_id", id, "user_id", p.ID)
	return nil
}

func (s *Service) ExportOwn(ctx context.Context, p internal.Principal) ([]byte, error) {
	items, err := s.ListOwn(ctx, p)
	if err != nil {
		return nil, err
	}
	data, err := EncodeCSV(items, false)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode csv", err)
	}
	return data, nil
}

// PDFOwn renders the caller's timesheets for GET /timesheets/download-pdf.
func (s *Service) PDFOwn(ctx context.Context, p internal.Principal) ([]byte, error) {
	items, err := s.ListOwn(ctx, p)
	if err != nil {
		return nil, err
	}
	data, err := EncodePDF("Timesheets - "+p.Name, items)
	if err != nil {
		s.logger.Error("failed to render timesheet pdf", "error", err, "user_id", p.ID)
		return nil, internal.NewInternalError("failed to render pdf", err)
	}
	return data, nil
}

// ListAll is the admin view across every employee.
func (s *Service) ListAll(ctx context.Context, filter Filter) ([]Timesheet, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list all timesheets", "error", err)
		return nil, internal.NewInternalError("failed to list timesheets", err)
	}
	return FromRecords(records), nil
}

func (s *Service) ExportAll(ctx context.Context, filter Filter) ([]byte, error) {
	items, err := s.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	data, err := EncodeCSV(items, true)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode csv", err)
	}
	return data, nil
}

// Review moves a pending timesheet to accepted or rejected.
func (s *Service) Review(ctx context.Context, reviewer internal.Principal, id string, dto ReviewDTO) (*Timesheet, error) {
	if !reviewer.IsAdmin() {
		s.logger.Warn("review denied: not an admin", "user_id", reviewer.ID, "timesheet_id", id)
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !FromRecord(record).CanReview() {
		s.logger.Warn("cannot review timesheet in current status",
			"timesheet_id", id,
			"current_status", record.Status)
		return nil, internal.ErrTimesheetNotReviewable
	}

	now := s.now()
	ts := record.Timesheet
	ts.Status = string(ParseStatus(dto.Status))
	ts.AdminComments = dto.AdminComments
	ts.ReviewedBy = &reviewer.ID
	ts.ReviewedAt = &now
	if err := s.repo.Review(ctx, &ts); err != nil {
		if isWorkflowError(err) {
			s.logger.Warn("timesheet changed before review", "timesheet_id", id, "error", err)
			return nil, err
		}
		s.logger.Error("failed to review timesheet", "error", err, "timesheet_id", id)
		return nil, internal.NewInternalError("failed to review timesheet", err)
	}

	s.logger.Info("timesheet reviewed",
		"timesheet_id", id,
		"reviewer_id", reviewer.ID,
		"status", ts.Status)
	s.publish(ctx, events.NewTimesheetReviewedEvent(id, ts.EmployeeID, reviewer.ID, ts.Status, ts.AdminComments))

	return s.get(ctx, id)
}

func (s *Service) owned(ctx context.Context, p internal.Principal, id string) (*Record, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.EmployeeID != p.ID {
		s.logger.Warn("unauthorized access to timesheet",
			"timesheet_id", id,
			"user_id", p.ID,
			"owner_id", record.EmployeeID)
		// indistinguishable from a missing record
		return nil, internal.ErrTimesheetNotFound
	}
	return record, nil
}

func (s *Service) get(ctx context.Context, id string) (*Timesheet, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t := FromRecord(record)
	return &t, nil
}

func isWorkflowError(err error) bool {
	return errors.Is(err, internal.ErrTimesheetNotFound) ||
		errors.Is(err, internal.ErrTimesheetNotEditable) ||
		errors.Is(err, internal.ErrTimesheetNotReviewable)
}
