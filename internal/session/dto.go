package session

import (
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

// LoginDTO is the body of POST /auth/login.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// RegisterDTO is the body of POST /auth/register.
type RegisterDTO struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	v.Field("employeeId", d.EmployeeID).Required()
	v.Field("department", d.Department).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// loginResponse is the 2xx body of POST /auth/login.
type loginResponse struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}

func (d *RegisterDTO) normalize() {
	d.Role = string(internal.NormalizeRole(d.Role))
}
