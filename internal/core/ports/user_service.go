package ports

import (
	"context"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
)

// CreateUserInput carries a registration request. Password is plaintext.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	CPF      string
	Phone    *string
	Role     domain.Role
	COREN    *string
}

// UserService runs user registration and profile reads.
type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.UserResponse, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}

// ProfileCache stores profiles keyed by user id. A miss returns (nil, nil).
// Entries are only ever refreshed by expiry.
type ProfileCache interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
	Set(ctx context.Context, profile *domain.Profile) error
}
