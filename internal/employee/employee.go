package employee

import (
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
)

// Employee is an account as the admin screens see it. The password hash
// never leaves the server.
type Employee struct {
	ID         string        `json:"_id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	EmployeeID string        `json:"employeeId"`
	Department string        `json:"department"`
	Role       internal.Role `json:"role,omitempty"`
	IsActive   bool          `json:"isActive"`
	CreatedAt  *time.Time    `json:"createdAt,omitempty"`
}

func FromDataModel(u *userDatamodel.User) Employee {
	created := u.CreatedAt
	return Employee{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		EmployeeID: u.EmployeeCode,
		Department: u.Department,
		Role:       internal.NormalizeRole(u.Role),
		IsActive:   u.IsActive,
		CreatedAt:  &created,
	}
}

func FromDataModels(users []userDatamodel.User) []Employee {
	out := make([]Employee, 0, len(users))
	for i := range users {
		out = append(out, FromDataModel(&users[i]))
	}
	return out
}
