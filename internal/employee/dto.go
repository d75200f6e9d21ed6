package employee

import (
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

// Form is the body of POST /admin/employees and PUT /admin/employees/{id}.
// Password and Role are optional; on update an empty password keeps the
// current one.
type Form struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password,omitempty"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
	Role       string `json:"role,omitempty"`
	IsActive   *bool  `json:"isActive,omitempty"`
}

func (f Form) validator() *validation.ValidationBuilder {
	v := validation.NewValidator()
	v.Field("name", f.Name).Required().MaxLength(255)
	v.Field("email", f.Email).Required().Email()
	v.Field("employeeId", f.EmployeeID).Required().MaxLength(64)
	v.Field("department", f.Department).MaxLength(128)
	v.Field("role", f.Role).OneOf(internal.ErrCodeInvalidRole, string(internal.RoleAdmin), string(internal.RoleEmployee))
	return v
}

// ValidateCreate requires a password.
func (f Form) ValidateCreate() error {
	v := f.validator()
	v.Field("password", f.Password).Required().MinLength(6)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (f Form) ValidateUpdate() error {
	v := f.validator()
	v.Field("password", f.Password).MinLength(6)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// RequireFields is the client-side check for an update: required fields
// only, formats are left to the server.
func (f Form) RequireFields() error {
	v := validation.NewValidator()
	v.Field("name", f.Name).Required()
	v.Field("email", f.Email).Required()
	v.Field("employeeId", f.EmployeeID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// RequireCreateFields also requires a password.
func (f Form) RequireCreateFields() error {
	v := validation.NewValidator()
	v.Field("name", f.Name).Required()
	v.Field("email", f.Email).Required()
	v.Field("employeeId", f.EmployeeID).Required()
	v.Field("password", f.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// FormFrom pre-fills an edit form from an existing account.
func FormFrom(e Employee) Form {
	active := e.IsActive
	return Form{
		Name:       e.Name,
		Email:      e.Email,
		EmployeeID: e.EmployeeID,
		Department: e.Department,
		Role:       string(e.Role),
		IsActive:   &active,
	}
}

// Patch is a partial account edit. Nil fields keep their value and an empty
// string clears the field.
type Patch struct {
	Name       *string
	Email      *string
	Password   *string
	EmployeeID *string
	Department *string
	Role       *string
	IsActive   *bool
}

// Apply overlays the set fields of p.
func (f Form) Apply(p Patch) Form {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Password != nil {
		f.Password = *p.Password
	}
	if p.EmployeeID != nil {
		f.EmployeeID = *p.EmployeeID
	}
	if p.Department != nil {
		f.Department = *p.Department
	}
	if p.Role != nil {
		f.Role = *p.Role
	}
	if p.IsActive != nil {
		active := *p.IsActive
		f.IsActive = &active
	}
	return f
}
