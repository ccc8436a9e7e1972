package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles() {
		if !r.Valid() {
			t.Fatalf("expected %s to be valid", r)
		}
	}
	for _, r := range []Role{"", "nurse", "ADMIN"} {
		if r.Valid() {
			t.Fatalf("expected %q to be invalid", r)
		}
	}
}

func TestUser_ToResponseOmitsPassword(t *testing.T) {
	coren := "MG-1"
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	u := &User{
		ID: "u1", Name: "Ana", Email: "ana@x.com", Password: "$2a$10$hash",
		CPF: "111", Role: RoleNurse, COREN: &coren, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}

	raw, err := json.Marshal(u.ToResponse())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "password") || strings.Contains(string(raw), "hash") {
		t.Fatalf("projection leaks the password: %s", raw)
	}

	raw, err = json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "$2a$10$hash") {
		t.Fatalf("user JSON leaks the password: %s", raw)
	}
}

func TestUser_Deleted(t *testing.T) {
	u := &User{}
	if u.Deleted() {
		t.Fatal("fresh user must not be deleted")
	}
	now := time.Now()
	u.DeletedAt = &now
	if !u.Deleted() {
		t.Fatal("expected deleted")
	}
}

func TestErrors(t *testing.T) {
	if !errors.Is(ErrUserNotFound, ErrNotFound) {
		t.Fatal("ErrUserNotFound must match ErrNotFound")
	}
	if err := InvalidRoleError("DOCTOR"); !errors.Is(err, ErrInvalidRole) || !strings.Contains(err.Error(), "NURSE") {
		t.Fatalf("unexpected invalid role error: %v", err)
	}
	for _, err := range []error{ErrDuplicateEmail, ErrDuplicateCPF, ErrDuplicateCOREN} {
		if !IsDuplicate(err) {
			t.Fatalf("expected %v to be a duplicate", err)
		}
	}
	if IsDuplicate(ErrMissingCOREN) {
		t.Fatal("missing COREN is not a duplicate")
	}
}
