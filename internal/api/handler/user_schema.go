package handler

import "github.com/univas/vaccination-scheduling/internal/core/domain"

// errorResponse is the standard error envelope returned on 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// invalidRoleResponse lists the accepted roles next to the error.
type invalidRoleResponse struct {
	Error      string        `json:"error"`
	ValidRoles []domain.Role `json:"validRoles"`
}

// --- Request / Response types ---

type createUserRequest struct {
	Name     string  `json:"name"     validate:"required"`
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	CPF      string  `json:"cpf"      validate:"required"`
	Phone    *string `json:"phone"    validate:"omitempty"`
	Role     string  `json:"role"     validate:"required"`
	COREN    *string `json:"coren"    validate:"omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string               `json:"token"`
	User  *domain.UserResponse `json:"user"`
}
