// Package domain defines the entities and data-access contracts shared by
// the logic and repository layers.
package domain

import (
	"context"
	"errors"
)

// ErrDuplicateEmail is returned by UserRepository.Create when the email is
// already taken. Repositories derive it from the storage-level uniqueness
// constraint, so concurrent registrations cannot both succeed.
var ErrDuplicateEmail = errors.New("email already registered")

// User represents a registered principal.
// PasswordHash is the bcrypt digest of the user's password; it is never
// serialized into responses and never logged.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// RegisterRequest carries the registration form fields. Field presence is
// validated by the logic layer, not by binding tags, so the validation order
// (and the error kind reported first) stays under the service's control.
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginRequest carries the login form fields.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// UserRepository defines the data-access contract for user records.
// Implementations live in internal/core/repository; the logic layer depends
// on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// Create inserts a new user and returns it with the generated ID.
	// Returns ErrDuplicateEmail when the email is already taken; the
	// check-then-insert is atomic on the storage side.
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)

	// FindByEmail returns the user with the given email, matched exactly
	// and case-sensitively. Returns (nil, nil) when no user is found;
	// absence is a normal outcome the caller must handle.
	FindByEmail(ctx context.Context, email string) (*User, error)
}
