package ports

import (
	"context"
	"time"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.UserResponse, error)
}

// TokenIssuer signs tokens. expiresIn <= 0 selects the configured default.
type TokenIssuer interface {
	Issue(payload domain.TokenPayload, expiresIn time.Duration) (string, error)
}

// TokenVerifier checks tokens. Failures are *domain.TokenError.
type TokenVerifier interface {
	Verify(token string) (*domain.TokenPayload, error)
}

type TokenService interface {
	TokenIssuer
	TokenVerifier
}

// PasswordHasher is a one-way credential hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}
