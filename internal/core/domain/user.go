package domain

import (
	"slices"
	"time"
)

// Role is the profile a user holds in the vaccination platform.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleNurse    Role = "NURSE"
	RoleManager  Role = "MANAGER"
)

// Roles returns every valid role, in declaration order.
func Roles() []Role {
	return []Role{RoleEmployee, RoleNurse, RoleManager}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return slices.Contains(Roles(), r)
}

// Document field names shared by stores and filters.
const (
	FieldID        = "_id"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldCPF       = "cpf"
	FieldCOREN     = "coren"
	FieldRole      = "role"
	FieldIsActive  = "isActive"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldDeletedAt = "deletedAt"
)

// User is the persisted identity record. Password always holds a hash.
type User struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Name      string     `json:"name" bson:"name"`
	Email     string     `json:"email" bson:"email"`
	Password  string     `json:"-" bson:"password"`
	CPF       string     `json:"cpf" bson:"cpf"`
	Phone     *string    `json:"phone" bson:"phone,omitempty"`
	Role      Role       `json:"role" bson:"role"`
	COREN     *string    `json:"coren" bson:"coren,omitempty"`
	IsActive  bool       `json:"isActive" bson:"isActive"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" bson:"deletedAt"`
}

// Deleted reports whether the record has been soft-deleted.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}

// UserResponse is the public projection of a User. It has no password field.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CPF       string    `json:"cpf"`
	Phone     *string   `json:"phone"`
	Role      Role      `json:"role"`
	COREN     *string   `json:"coren"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToResponse projects u into its password-free public form.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CPF:       u.CPF,
		Phone:     u.Phone,
		Role:      u.Role,
		COREN:     u.COREN,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserFilter selects users. Zero-valued fields are ignored; the zero filter
// matches every record.
type UserFilter struct {
	ID    string
	Email string
	CPF   string
	COREN string
	Role  Role
	// ActiveOnly restricts the match to isActive=true and deletedAt=null.
	ActiveOnly bool
}
