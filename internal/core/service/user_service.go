package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
	"github.com/univas/vaccination-scheduling/internal/core/ports"
)

// UserService implements user registration and profile reads.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	cache  ports.ProfileCache
	now    func() time.Time
	logger zerolog.Logger
}

// NewUserService wires the registration pipeline. cache may be nil.
func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, cache ports.ProfileCache, logger zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		cache:  cache,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// CreateUser validates uniqueness and role constraints, hashes the password
// and persists the user. Every check runs before the single write, so a
// failed registration leaves the store untouched.
//
// The existence checks are not atomic with the insert; a concurrent
// registration that slips past them is caught by the store's unique indexes
// and reported with the same duplicate errors.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.UserResponse, error) {
	if !in.Role.Valid() {
		return nil, domain.InvalidRoleError(string(in.Role))
	}

	// 1. Email.
	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, s.storeFailure("check email", err)
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	// 2. CPF.
	exists, err = s.repo.CPFExists(ctx, in.CPF)
	if err != nil {
		return nil, s.storeFailure("check cpf", err)
	}
	if exists {
		return nil, domain.ErrDuplicateCPF
	}

	// 3. Nurses need a COREN nobody else holds.
	if in.Role == domain.RoleNurse {
		if in.COREN == nil || *in.COREN == "" {
			return nil, domain.ErrMissingCOREN
		}
		exists, err = s.repo.CORENExists(ctx, *in.COREN)
		if err != nil {
			return nil, s.storeFailure("check coren", err)
		}
		if exists {
			return nil, domain.ErrDuplicateCOREN
		}
	}

	// 4. Hash. Only the hash is stored.
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	// 5. Persist.
	now := s.now()
	user := &domain.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		CPF:       in.CPF,
		Phone:     emptyToNil(in.Phone),
		Role:      in.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.COREN != nil && *in.COREN != "" {
		user.COREN = in.COREN
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if domain.IsDuplicate(err) {
			return nil, err
		}
		return nil, s.storeFailure("insert", err)
	}

	s.logger.Info().
		Str("user_id", created.ID).
		Str("role", string(created.Role)).
		Msg("user registered")

	// 6. Project without the password.
	return created.ToResponse(), nil
}

// GetProfile returns the caller's profile with relations. Soft-deleted users
// are reported as not found.
func (s *UserService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", id).Msg("profile cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	u, err := s.repo.FindByIDWithRelations(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if u.Deleted() {
		return nil, domain.ErrUserNotFound
	}

	profile := u.ToProfile()
	if s.cache != nil {
		if err := s.cache.Set(ctx, profile); err != nil {
			s.logger.Warn().Err(err).Str("user_id", id).Msg("profile cache write failed")
		}
	}
	return profile, nil
}

func (s *UserService) storeFailure(step string, err error) error {
	s.logger.Error().Err(err).Str("step", step).Msg("user registration failed")
	return fmt.Errorf("create user: %s: %w", step, err)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
