package admin

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// TimesheetService is the part of timesheet.Service the admin routes use.
type TimesheetService interface {
	ListAll(ctx context.Context, filter timesheet.Filter) ([]timesheet.Timesheet, error)
	ExportAll(ctx context.Context, filter timesheet.Filter) ([]byte, error)
	Review(ctx context.Context, reviewer internal.Principal, id string, dto timesheet.ReviewDTO) (*timesheet.Timesheet, error)
}

type StatsRepository interface {
	Counts(ctx context.Context) (Stats, error)
}

type Service struct {
	timesheets TimesheetService
	stats      StatsRepository
	logger     *slog.Logger
}

func NewService(timesheets TimesheetService, stats StatsRepository, logger *slog.Logger) *Service {
	return &Service{
		timesheets: timesheets,
		stats:      stats,
		logger:     logger,
	}
}

func (s *Service) ListTimesheets(ctx context.Context, filter timesheet.Filter) ([]timesheet.Timesheet, error) {
	return s.timesheets.ListAll(ctx, filter)
}

func (s *Service) Review(ctx context.Context, reviewer internal.Principal, id string, dto timesheet.ReviewDTO) (*timesheet.Timesheet, error) {
	return s.timesheets.Review(ctx, reviewer, id, dto)
}

func (s *Service) Export(ctx context.Context, filter timesheet.Filter) ([]byte, error) {
	return s.timesheets.ExportAll(ctx, filter)
}

func (s *Service) Dashboard(ctx context.Context) (*Stats, error) {
	stats, err := s.stats.Counts(ctx)
	if err != nil {
		s.logger.Error("failed to count dashboard stats", "error", err)
		return nil, internal.NewInternalError("failed to load dashboard", err)
	}
	return &stats, nil
}
