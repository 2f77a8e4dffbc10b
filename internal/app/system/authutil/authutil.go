// internal/app/system/authutil/authutil.go
// Package authutil validates console account input and hashes passwords.
package authutil

import (
	"errors"
	"strings"

	"github.com/dalemusser/stratashop/internal/app/system/normalize"
	"github.com/dalemusser/stratashop/internal/domain/models"
)

// UserInput holds the raw request values for a console account.
type UserInput struct {
	Name     string
	Email    string
	Role     string
	Password string
	IsEdit   bool // If true, password is optional (leave blank to keep existing)
}

// UserResult holds the validated fields ready for storage.
type UserResult struct {
	Name         string
	Email        string
	Role         string
	PasswordHash *string // set only when a password was provided
}

// Common validation errors
var (
	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("email is not a valid address")
	ErrInvalidRole      = errors.New("role must be one of admin, staff, user")
	ErrPasswordRequired = errors.New("password is required")
)

// isValidEmail performs a basic email format validation: one @ with text
// before it and a dotted domain after it.
func isValidEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	dotIdx := strings.LastIndex(domain, ".")
	return dotIdx >= 1 && dotIdx < len(domain)-1
}

// ValidateUser normalizes and validates in. On success the password, if
// given, has been checked against ValidatePassword and hashed.
// An empty role means models.RoleUser.
func ValidateUser(in UserInput) (*UserResult, error) {
	res := &UserResult{
		Name:  normalize.Name(in.Name),
		Email: normalize.Email(in.Email),
		Role:  normalize.Role(in.Role),
	}

	if res.Name == "" {
		return nil, ErrNameRequired
	}
	if res.Email == "" {
		return nil, ErrEmailRequired
	}
	if !isValidEmail(res.Email) {
		return nil, ErrInvalidEmail
	}
	if res.Role == "" {
		res.Role = models.RoleUser
	}
	if !models.IsValidRole(res.Role) {
		return nil, ErrInvalidRole
	}

	if in.Password == "" {
		if !in.IsEdit {
			return nil, ErrPasswordRequired
		}
		return res, nil
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	res.PasswordHash = &hash
	return res, nil
}
