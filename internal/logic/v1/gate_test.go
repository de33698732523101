package v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/minhdang/passport/internal/core/domain"
	"github.com/minhdang/passport/internal/session"
)

func newTestGate(t *testing.T) (*AccessGate, *session.Manager, *memUserRepo) {
	t.Helper()
	repo := newMemUserRepo()
	mgr := session.NewManager(time.Hour)
	return NewAccessGate(mgr, repo), mgr, repo
}

func registerTestUser(t *testing.T, repo *memUserRepo, email string) *domain.User {
	t.Helper()
	svc := NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), 6)
	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Alice", Email: email, Password: "secret1",
	})
	require.NoError(t, err)
	return user
}

func TestAuthorize_NoSession(t *testing.T) {
	gate, _, _ := newTestGate(t)

	user, err := gate.Authorize(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Nil(t, user)

	user, err = gate.Authorize(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Nil(t, user)
}

func TestAuthorize_ValidSession(t *testing.T) {
	gate, mgr, repo := newTestGate(t)
	registered := registerTestUser(t, repo, "a@b.com")

	token := mgr.Issue("a@b.com")

	user, err := gate.Authorize(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestAuthorize_AfterDestroy(t *testing.T) {
	gate, mgr, repo := newTestGate(t)
	registerTestUser(t, repo, "a@b.com")

	token := mgr.Issue("a@b.com")
	mgr.Destroy(token)

	user, err := gate.Authorize(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Nil(t, user)
}

func TestAuthorize_DeletedUser(t *testing.T) {
	gate, mgr, repo := newTestGate(t)
	registerTestUser(t, repo, "a@b.com")

	token := mgr.Issue("a@b.com")
	repo.delete("a@b.com")

	// Session outlived its subject; must read as anonymous.
	user, err := gate.Authorize(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Nil(t, user)
}
