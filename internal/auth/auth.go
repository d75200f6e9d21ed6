package auth

import (
	"context"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Credentials is what login needs to know about an account.
type Credentials struct {
	UserID       string
	PasswordHash string
	IsActive     bool
}

// Account is the stored user behind a token.
type Account struct {
	ID       string
	Email    string
	Name     string
	Role     internal.Role
	IsActive bool
}

func (a Account) Principal() internal.Principal {
	return internal.Principal{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
		Role:  a.Role,
	}
}

type RepositoryAPI interface {
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	GetAccount(ctx context.Context, userID string) (*Account, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(account Account) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
