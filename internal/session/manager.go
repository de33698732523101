// Package session manages server-side sessions binding an opaque token to
// an authenticated subject. State is process-local: sessions do not survive
// a restart, which also serves as the implicit global logout.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	email     string
	expiresAt time.Time
}

// Manager owns all session state. It is safe for concurrent use; each
// request only ever touches its own token, so a single mutex suffices.
type Manager struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]entry
	now      func() time.Time
}

// NewManager creates a Manager whose sessions expire ttl after issuance.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

// Issue binds a fresh opaque token to the given subject email and returns
// the token. Bindings are per token, not per subject: earlier tokens for the
// same email stay valid until they expire or are destroyed, so concurrent
// clients (separate browsers) each keep their own session. Within one
// client, the new cookie replaces the old token, which supersedes the prior
// binding for that interaction.
func (m *Manager) Issue(email string) string {
	token := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = entry{
		email:     email,
		expiresAt: m.now().Add(m.ttl),
	}
	return token
}

// Subject returns the email bound to the token. Expired or unknown tokens
// report no subject; expired entries are evicted on the way out.
func (m *Manager) Subject(token string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[token]
	if !ok {
		return "", false
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, token)
		return "", false
	}
	return e.email, true
}

// Destroy removes the session for the token. Destroying an unknown or
// already-destroyed token is a no-op.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// size reports the number of stored entries, counting expired ones that
// have not been read since expiring. Test helper.
func (m *Manager) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
