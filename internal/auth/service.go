package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/employee"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Registrar creates accounts on behalf of self-registration.
type Registrar interface {
	Create(ctx context.Context, form employee.Form) (*employee.Employee, error)
}

// Service is the main auth service with dependencies
type Service struct {
	repo      RepositoryAPI
	tokens    TokenGeneratorAPI
	registrar Registrar
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, registrar Registrar, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		registrar: registrar,
		logger:    logger,
	}
}

// Authenticate validates credentials and returns the identity with a token.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	creds, err := s.repo.GetCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("failed to load credentials", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Info("login rejected: bad password", "email", email)
		return nil, internal.ErrInvalidCredentials
	}
	if !creds.IsActive {
		s.logger.Info("login rejected: inactive account", "email", email)
		return nil, internal.ErrUserInactive
	}

	account, err := s.repo.GetAccount(ctx, creds.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load account", err)
	}

	token, err := s.tokens.GenerateAccessToken(*account)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "user_id", account.ID, "role", account.Role)

	return &LoginResponse{
		User: UserView{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
			Role:  string(account.Role),
		},
		Token: token,
	}, nil
}

// Register creates an account from the public sign-up form.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*employee.Employee, error) {
	form := employee.Form{
		Name:       dto.Name,
		Email:      dto.Email,
		Password:   dto.Password,
		EmployeeID: dto.EmployeeID,
		Department: dto.Department,
		Role:       string(internal.NormalizeRole(dto.Role)),
	}
	if err := form.ValidateCreate(); err != nil {
		return nil, err
	}
	if v := validationRequired("department", dto.Department); v != nil {
		return nil, v
	}

	e, err := s.registrar.Create(ctx, form)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", e.ID, "role", e.Role)
	return e, nil
}

// Authorize resolves a bearer token to the current, active account.
func (s *Service) Authorize(ctx context.Context, token string) (internal.Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return internal.Principal{}, err
	}

	account, err := s.repo.GetAccount(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			return internal.Principal{}, internal.ErrInvalidToken
		}
		return internal.Principal{}, internal.NewInternalError("failed to load account", err)
	}
	if !account.IsActive {
		return internal.Principal{}, internal.ErrUserInactive
	}

	// role changes apply immediately, not at the next login
	return account.Principal(), nil
}

func validationRequired(field, value string) *internal.AppError {
	if strings.TrimSpace(value) == "" {
		return internal.NewValidationFieldError(field, fmt.Sprintf("%s is required", field), internal.ErrCodeValidationFailed)
	}
	return nil
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
		now:    time.Now,
	}
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(account Account) (string, error) {
	now := j.now()

	claims := &Claims{
		UserID: account.ID,
		Email:  account.Email,
		Role:   string(account.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   account.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
