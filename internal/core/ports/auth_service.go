package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Password string
	FullName string
}

// AccessToken is the bearer token handed out by Login.
type AccessToken struct {
	Token     string
	TokenType string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*AccessToken, error)
	Logout(ctx context.Context, rawToken string) error
}

// Guard turns bearer tokens into principals and checks roles.
type Guard interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error)
	RequireAdmin(p *domain.Principal) error
}
