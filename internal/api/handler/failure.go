package handler

import (
	"errors"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
)

// failureReason is the metrics label for a failed registration.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrDuplicateCPF):
		return "duplicate_cpf"
	case errors.Is(err, domain.ErrDuplicateCOREN):
		return "duplicate_coren"
	case errors.Is(err, domain.ErrMissingCOREN):
		return "missing_coren"
	default:
		return "internal"
	}
}

// loginResult is the metrics label for a login attempt.
func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return "inactive"
	default:
		return "error"
	}
}
