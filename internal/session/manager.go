// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"

	"github.com/jeranaias/kindred-tui/internal/api"
	"github.com/jeranaias/kindred-tui/internal/model"
)

// Authenticator is the slice of the REST client the session manager needs.
type Authenticator interface {
	Me(ctx context.Context) (*model.Identity, error)
	Logout(ctx context.Context) error
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks who is signed in. It is the single source of truth for
// the current identity; everything downstream (the realtime connection,
// the room directory, the UI) derives from its snapshots.
type Manager struct {
	mu sync.Mutex

	auth Authenticator

	identity *model.Identity
	loading  bool
	errMsg   string

	// generation increments on every identity transition. Async work
	// captures the generation it started under and discards its result
	// if the generation has moved on.
	generation uint64

	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	Identity   *model.Identity
	Loading    bool
	Err        string
	Generation uint64
}

// Authenticated reports whether a user is signed in.
func (s Snapshot) Authenticated() bool {
	return s.Identity != nil
}

// NewManager creates a session manager in the signed-out state.
// Call Refresh to resolve the persisted session cookie, if any.
func NewManager(auth Authenticator) *Manager {
	return &Manager{
		auth:        auth,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Identity returns the signed-in identity, or nil when signed out.
func (m *Manager) Identity() *model.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Generation returns the current identity generation.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Identity:   m.identity,
		Loading:    m.loading,
		Err:        m.errMsg,
		Generation: m.generation,
	}
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Refresh resolves the current session against the server. An invalid or
// missing session cookie is the normal signed-out state, not an error;
// only transport and server failures surface as an error message.
func (m *Manager) Refresh(ctx context.Context) {
	m.mu.Lock()
	m.loading = true
	m.errMsg = ""
	subs := m.subscribersLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()
	notify(subs, snap)

	identity, err := m.auth.Me(ctx)

	m.mu.Lock()
	m.loading = false
	switch {
	case err == nil:
		m.setIdentityLocked(identity)
	case api.IsUnauthenticated(err):
		m.setIdentityLocked(nil)
	default:
		// An unverifiable session is treated as signed out. The error
		// message tells the user why.
		m.setIdentityLocked(nil)
		m.errMsg = api.UserMessage(err, "could not reach the server")
	}
	subs = m.subscribersLocked()
	snap = m.snapshotLocked()
	m.mu.Unlock()
	notify(subs, snap)
}

// SetIdentity installs an identity obtained out of band, such as from a
// successful login call.
func (m *Manager) SetIdentity(identity *model.Identity) {
	m.mu.Lock()
	m.setIdentityLocked(identity)
	m.errMsg = ""
	subs := m.subscribersLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()
	notify(subs, snap)
}

// Logout signs the user out. The server call is best effort; the local
// transition to signed-out always happens.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.auth.Logout(ctx)

	m.mu.Lock()
	m.setIdentityLocked(nil)
	m.errMsg = ""
	subs := m.subscribersLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()
	notify(subs, snap)

	return err
}

// setIdentityLocked installs identity and bumps the generation when the
// signed-in user actually changed. Caller holds m.mu.
func (m *Manager) setIdentityLocked(identity *model.Identity) {
	if sameIdentity(m.identity, identity) {
		m.identity = identity
		return
	}
	m.identity = identity
	m.generation++
}

func sameIdentity(a, b *model.Identity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn to be called after every state transition.
// The returned function cancels the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

// notify runs callbacks outside the lock so subscribers can call back
// into the manager.
func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
