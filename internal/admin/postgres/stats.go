package postgres

import (
	"context"

	"github.com/frahmantamala/timesheet-management/internal/admin"
	"github.com/jmoiron/sqlx"
)

// 'approved' rows predate the accepted status and count as accepted.
const timesheetCountsQuery = `
SELECT
	COUNT(*) AS total_timesheets,
	COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
	COALESCE(SUM(CASE WHEN status IN ('accepted', 'approved') THEN 1 ELSE 0 END), 0) AS accepted,
	COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0) AS rejected
FROM timesheets`

const employeeCountQuery = `SELECT COUNT(*) FROM users WHERE role = 'employee'`

// StatsRepository computes the dashboard counters with hand-written SQL.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) admin.StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Counts(ctx context.Context) (admin.Stats, error) {
	var stats admin.Stats
	if err := r.db.GetContext(ctx, &stats, timesheetCountsQuery); err != nil {
		return admin.Stats{}, err
	}
	if err := r.db.GetContext(ctx, &stats.TotalEmployees, employeeCountQuery); err != nil {
		return admin.Stats{}, err
	}
	return stats, nil
}
