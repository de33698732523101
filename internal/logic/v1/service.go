package v1

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minhdang/passport/internal/core/domain"
	"github.com/minhdang/passport/middleware"
)

// maxPasswordBytes is bcrypt's input limit; GenerateFromPassword rejects
// longer plaintexts, so the policy check has to happen before hashing.
const maxPasswordBytes = 72

// AuthService implements registration and login policy.
// It depends on the repository and hasher contracts (injected via
// constructor) and MUST NOT access the database or SQL directly.
type AuthService struct {
	users          domain.UserRepository
	hasher         PasswordHasher
	minPasswordLen int
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, hasher PasswordHasher, minPasswordLen int) *AuthService {
	return &AuthService{
		users:          users,
		hasher:         hasher,
		minPasswordLen: minPasswordLen,
	}
}

// Register creates a new user. Checks run in a fixed order, and the first
// failing check decides the error kind: empty fields, then password length,
// then email uniqueness. Validation happens before any hashing so malformed
// input never pays the bcrypt cost.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	if req.Name == "" || req.Email == "" || req.Password == "" {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register: all fields are required: %w", ErrValidation)
	}

	if utf8.RuneCountInString(req.Password) < s.minPasswordLen {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register: password must be at least %d characters: %w", s.minPasswordLen, ErrValidation)
	}

	if len(req.Password) > maxPasswordBytes {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register: password must be at most %d bytes: %w", maxPasswordBytes, ErrValidation)
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register user %q: %w", req.Email, ErrEmailTaken)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		// A concurrent registration can slip between the lookup and the
		// insert; the storage constraint is the authoritative check.
		if errors.Is(err, domain.ErrDuplicateEmail) {
			span.SetAttributes(attribute.Bool("registration.success", false))
			return nil, fmt.Errorf("register user %q: %w", req.Email, ErrEmailTaken)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return user, nil
}

// Login verifies the given credentials and returns the authenticated user.
// The caller is responsible for issuing a session afterwards.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("login: all fields are required: %w", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Email, err)
	}
	if user == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrUserNotFound)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrInvalidCredentials)
	}

	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return user, nil
}
