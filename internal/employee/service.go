package employee

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository defines the data access methods for accounts
type Repository interface {
	Create(ctx context.Context, u *userDatamodel.User) error
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	List(ctx context.Context) ([]userDatamodel.User, error)
	Update(ctx context.Context, u *userDatamodel.User) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	return FromDataModels(users), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Employee, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e := FromDataModel(u)
	return &e, nil
}

// Create adds an account. Role defaults to employee and the account starts
// active unless the form says otherwise.
func (s *Service) Create(ctx context.Context, form Form) (*Employee, error) {
	if err := form.ValidateCreate(); err != nil {
		return nil, err
	}

	email := normalizeEmail(form.Email)
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(form.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	active := true
	if form.IsActive != nil {
		active = *form.IsActive
	}
	u := &userDatamodel.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(form.Name),
		PasswordHash: hash,
		EmployeeCode: strings.TrimSpace(form.EmployeeID),
		Department:   strings.TrimSpace(form.Department),
		Role:         string(internal.NormalizeRole(form.Role)),
		IsActive:     active,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("failed to create employee", "error", err, "email", email)
		return nil, internal.NewInternalError("failed to create employee", err)
	}

	s.logger.Info("employee created", "employee_id", u.ID, "email", email, "role", u.Role)
	return s.Get(ctx, u.ID)
}

func (s *Service) Update(ctx context.Context, id string, form Form) (*Employee, error) {
	if err := form.ValidateUpdate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(form.Email)
	if email != u.Email {
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
	}

	u.Email = email
	u.Name = strings.TrimSpace(form.Name)
	u.EmployeeCode = strings.TrimSpace(form.EmployeeID)
	u.Department = strings.TrimSpace(form.Department)
	if form.Role != "" {
		u.Role = string(internal.NormalizeRole(form.Role))
	}
	if form.IsActive != nil {
		u.IsActive = *form.IsActive
	}
	if form.Password != "" {
		hash, err := s.HashPassword(form.Password)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, internal.NewInternalError("failed to update employee", err)
	}

	s.logger.Info("employee updated", "employee_id", id)
	return s.Get(ctx, id)
}

// Delete removes an account together with its timesheets. An admin cannot
// delete their own account.
func (s *Service) Delete(ctx context.Context, actor internal.Principal, id string) error {
	if actor.ID == id {
		return internal.NewValidationError("You cannot delete your own account", internal.ErrCodeValidationFailed)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			return err
		}
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return internal.NewInternalError("failed to delete employee", err)
	}

	s.logger.Info("employee deleted", "employee_id", id, "actor_id", actor.ID)
	return nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			return nil
		}
		return internal.NewInternalError("failed to check email", err)
	}
	if existing.ID != exceptID {
		return internal.ErrEmailTaken
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
