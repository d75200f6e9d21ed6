package timesheet

import "time"

type Timesheet struct {
	ID            string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	EmployeeID    string     `gorm:"column:employee_id;type:varchar(36);not null;index"`
	Date          string     `gorm:"column:work_date;type:varchar(10);not null;index"`
	PlannedWork   string     `gorm:"column:planned_work;not null"`
	ActualWork    string     `gorm:"column:actual_work;not null"`
	Remarks       string     `gorm:"column:remarks"`
	Status        string     `gorm:"column:status;type:varchar(16);not null;index"`
	AdminComments string     `gorm:"column:admin_comments"`
	ReviewedBy    *string    `gorm:"column:reviewed_by;type:varchar(36)"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}
