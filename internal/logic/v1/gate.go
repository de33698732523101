package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minhdang/passport/internal/core/domain"
	"github.com/minhdang/passport/middleware"
)

// SessionReader is the session-manager surface the gate needs.
type SessionReader interface {
	Subject(token string) (string, bool)
}

// AccessGate authorizes entry to protected operations. It resolves the
// session token to a subject and the subject to a user record; any gap in
// that chain is ErrUnauthenticated.
type AccessGate struct {
	sessions SessionReader
	users    domain.UserRepository
}

// NewAccessGate creates an AccessGate with the given dependencies.
func NewAccessGate(sessions SessionReader, users domain.UserRepository) *AccessGate {
	return &AccessGate{sessions: sessions, users: users}
}

// Authorize returns the user bound to the session token. A missing,
// expired, or destroyed session fails with ErrUnauthenticated, as does a
// session whose subject no longer exists in the user store.
func (g *AccessGate) Authorize(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.authorize", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if token == "" {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("authorize: missing session token: %w", ErrUnauthenticated)
	}

	email, ok := g.sessions.Subject(token)
	if !ok {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("authorize: no active session: %w", ErrUnauthenticated)
	}

	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query session subject %q: %w", email, err)
	}
	if user == nil {
		// The session outlived its user; treat it as anonymous.
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("authorize subject %q: %w", email, ErrUnauthenticated)
	}

	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Bool("session.valid", true),
	)

	return user, nil
}
