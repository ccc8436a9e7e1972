package ports

import (
	"context"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
)

// UserRepository is the user record store.
type UserRepository interface {
	Store[domain.User, domain.UserFilter]

	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByCPF(ctx context.Context, cpf string) (*domain.User, error)
	FindByCOREN(ctx context.Context, coren string) (*domain.User, error)
	// FindByRole does not filter on isActive or deletedAt.
	FindByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	FindAllActive(ctx context.Context) ([]*domain.User, error)
	FindActiveNurses(ctx context.Context) ([]*domain.User, error)
	FindActiveManagers(ctx context.Context) ([]*domain.User, error)
	FindByIDWithRelations(ctx context.Context, id string) (*domain.UserWithRelations, error)

	EmailExists(ctx context.Context, email string) (bool, error)
	CPFExists(ctx context.Context, cpf string) (bool, error)
	CORENExists(ctx context.Context, coren string) (bool, error)

	UpdatePassword(ctx context.Context, id, hash string) (*domain.User, error)
	ToggleActive(ctx context.Context, id string, active bool) (*domain.User, error)

	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}
