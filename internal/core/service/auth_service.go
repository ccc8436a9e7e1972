package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
	"github.com/univas/vaccination-scheduling/internal/core/ports"
)

// AuthService implements login.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	tokenTTL time.Duration
	logger   zerolog.Logger
}

// NewAuthService builds an AuthService. tokenTTL <= 0 defers to the issuer's
// default lifetime.
func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, tokenTTL: tokenTTL, logger: logger}
}

// Login checks the credentials and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.UserResponse, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if s.hasher.Compare(user.Password, password) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive || user.Deleted() {
		return "", nil, domain.ErrUserInactive
	}

	token, err := s.tokens.Issue(domain.TokenPayload{UserID: user.ID}, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	s.logger.Debug().Str("user_id", user.ID).Msg("login succeeded")
	return token, user.ToResponse(), nil
}
