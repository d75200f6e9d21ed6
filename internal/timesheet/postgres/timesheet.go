package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/timesheet-management/internal"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"gorm.io/gorm"
)

const ownerColumns = "timesheets.*, users.name AS owner_name, users.email AS owner_email, users.employee_code AS owner_code"

// TimesheetRepository implements timesheet.Repository using GORM
type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) timesheet.Repository {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) Create(ctx context.Context, ts *timesheetDatamodel.Timesheet) error {
	return r.db.WithContext(ctx).Create(ts).Error
}

func (r *TimesheetRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("timesheets").
		Select(ownerColumns).
		Joins("LEFT JOIN users ON users.id = timesheets.employee_id")
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id string) (*timesheet.Record, error) {
	var rec timesheet.Record
	err := r.withOwner(ctx).Where("timesheets.id = ?", id).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTimesheetNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List returns matching timesheets, newest date first.
func (r *TimesheetRepository) List(ctx context.Context, filter timesheet.Filter) ([]timesheet.Record, error) {
	q := r.withOwner(ctx)
	if filter.EmployeeID != "" {
		q = q.Where("timesheets.employee_id = ?", filter.EmployeeID)
	}
	if filter.StartDate != "" {
		q = q.Where("timesheets.work_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("timesheets.work_date <= ?", filter.EndDate)
	}

	var records []timesheet.Record
	err := q.Order("timesheets.work_date DESC").Order("timesheets.created_at DESC").Find(&records).Error
	return records, err
}

// UpdateContent rewrites the employee-owned columns while the timesheet is
// still editable. Review columns are never touched here.
func (r *TimesheetRepository) UpdateContent(ctx context.Context, ts *timesheetDatamodel.Timesheet) error {
	res := r.db.WithContext(ctx).Model(&timesheetDatamodel.Timesheet{}).
		Where("id = ? AND status IN ?", ts.ID, editableStatuses()).
		Updates(map[string]interface{}{
			"work_date":    ts.Date,
			"planned_work": ts.PlannedWork,
			"actual_work":  ts.ActualWork,
			"remarks":      ts.Remarks,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOr(ctx, ts.ID, internal.ErrTimesheetNotEditable)
	}
	return nil
}

// Review records the decision only if the timesheet is still pending.
func (r *TimesheetRepository) Review(ctx context.Context, ts *timesheetDatamodel.Timesheet) error {
	res := r.db.WithContext(ctx).Model(&timesheetDatamodel.Timesheet{}).
		Where("id = ? AND status = ?", ts.ID, string(timesheet.StatusPending)).
		Updates(map[string]interface{}{
			"status":         ts.Status,
			"admin_comments": ts.AdminComments,
			"reviewed_by":    ts.ReviewedBy,
			"reviewed_at":    ts.ReviewedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOr(ctx, ts.ID, internal.ErrTimesheetNotReviewable)
	}
	return nil
}

// Delete removes the timesheet while it is still editable.
func (r *TimesheetRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status IN ?", id, editableStatuses()).
		Delete(&timesheetDatamodel.Timesheet{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOr(ctx, id, internal.ErrTimesheetNotEditable)
	}
	return nil
}

// missingOr tells a vanished row apart from one whose status blocked the write.
func (r *TimesheetRepository) missingOr(ctx context.Context, id string, blocked error) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&timesheetDatamodel.Timesheet{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return internal.ErrTimesheetNotFound
	}
	return blocked
}

func editableStatuses() []string {
	return []string{string(timesheet.StatusPending), string(timesheet.StatusRejected)}
}
