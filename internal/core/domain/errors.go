package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Store errors.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing one")
)

// Registration and account errors.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateCPF       = errors.New("CPF already registered")
	ErrDuplicateCOREN     = errors.New("COREN already registered")
	ErrMissingCOREN       = errors.New("COREN is required for NURSE role")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
)

// InvalidRoleError wraps ErrInvalidRole with the rejected value.
func InvalidRoleError(role string) error {
	names := make([]string, 0, len(Roles()))
	for _, r := range Roles() {
		names = append(names, string(r))
	}
	return fmt.Errorf("%w %q: must be one of %s", ErrInvalidRole, role, strings.Join(names, ", "))
}

// ErrUserNotFound is the user flavour of ErrNotFound; errors.Is matches both.
var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

// IsDuplicate reports whether err is any of the uniqueness violations.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrDuplicateCPF) ||
		errors.Is(err, ErrDuplicateCOREN)
}
