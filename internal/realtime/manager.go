// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"sync"

	"github.com/jeranaias/kindred-tui/internal/model"
)

// ErrNotConnected is returned by Emit when no connection is open.
var ErrNotConnected = errors.New("realtime: not connected")

// State describes the connection lifecycle.
type State int

// Connection states. There is no reconnecting state: a dropped
// connection goes back to StateAbsent and stays there until the next
// Apply.
const (
	// StateAbsent means no connection exists.
	StateAbsent State = iota

	// StateConnecting means a dial is in flight.
	StateConnecting

	// StateOpen means the connection is established and tagged with a
	// user ID for its whole lifetime.
	StateOpen
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "absent"
	}
}

// Status is a point-in-time view of the connection.
type Status struct {
	State  State
	UserID string // identity the connection is tagged with, "" when absent
}

// =============================================================================
// CONNECTION MANAGER
// =============================================================================

// Manager owns the single realtime connection. A connection is tagged
// with exactly one user ID at dial time and is never re-tagged; when the
// identity changes the old connection is closed before a new one is
// dialed. The manager never reconnects on its own.
type Manager struct {
	mu sync.Mutex

	endpoint string
	dialer   Dialer

	state  State
	userID string
	sock   Socket

	// epoch invalidates the read pump and any in-flight dial whenever
	// the connection is torn down or replaced.
	epoch uint64

	handlers map[string]map[int]func(json.RawMessage)
	nextSub  int

	onState func(Status)
}

// NewManager creates a manager that dials endpoint. The endpoint is the
// bare websocket URL; the user ID is appended as a query parameter per
// connection.
func NewManager(endpoint string, dialer Dialer) *Manager {
	return &Manager{
		endpoint: endpoint,
		dialer:   dialer,
		handlers: make(map[string]map[int]func(json.RawMessage)),
	}
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{State: m.state, UserID: m.userID}
}

// SetStateHandler registers fn to be called on every state change.
func (m *Manager) SetStateHandler(fn func(Status)) {
	m.mu.Lock()
	m.onState = fn
	m.mu.Unlock()
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Apply reconciles the connection with the given identity. A nil
// identity closes any existing connection. A changed identity closes
// the old connection before dialing the new one, so no frame is ever
// sent or received under the wrong user ID. Applying the identity the
// connection is already serving is a no-op.
func (m *Manager) Apply(ctx context.Context, identity *model.Identity) error {
	want := ""
	if identity != nil {
		want = identity.ID
	}

	m.mu.Lock()
	if want == m.userID && m.state != StateAbsent {
		m.mu.Unlock()
		return nil
	}

	m.closeLocked()

	if want == "" {
		onState, status := m.onState, Status{State: m.state, UserID: m.userID}
		m.mu.Unlock()
		fireState(onState, status)
		return nil
	}

	m.state = StateConnecting
	m.userID = want
	m.epoch++
	myEpoch := m.epoch
	onState, status := m.onState, Status{State: m.state, UserID: m.userID}
	m.mu.Unlock()
	fireState(onState, status)

	sock, err := m.dialer.Dial(ctx, m.dialURL(want))

	m.mu.Lock()
	if m.epoch != myEpoch {
		// Identity changed while the dial was in flight; this
		// connection belongs to a dead epoch.
		m.mu.Unlock()
		if sock != nil {
			sock.Close()
		}
		return nil
	}

	if err != nil {
		m.state = StateAbsent
		m.userID = ""
		onState, status = m.onState, Status{State: m.state}
		m.mu.Unlock()
		fireState(onState, status)
		return err
	}

	m.sock = sock
	m.state = StateOpen
	onState, status = m.onState, Status{State: m.state, UserID: m.userID}
	m.mu.Unlock()
	fireState(onState, status)

	go m.readPump(sock, myEpoch)
	return nil
}

// Close tears down any open connection.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closeLocked()
	onState, status := m.onState, Status{State: m.state}
	m.mu.Unlock()
	fireState(onState, status)
}

// closeLocked tears down the current connection. Caller holds m.mu.
func (m *Manager) closeLocked() {
	if m.sock != nil {
		m.sock.Close()
		m.sock = nil
	}
	m.state = StateAbsent
	m.userID = ""
	m.epoch++
}

// dialURL appends the userId query parameter to the endpoint.
func (m *Manager) dialURL(userID string) string {
	query := url.Values{}
	query.Set("userId", userID)
	sep := "?"
	if u, err := url.Parse(m.endpoint); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return m.endpoint + sep + query.Encode()
}

// =============================================================================
// READ PUMP
// =============================================================================

// readPump drains frames from sock until it fails or the epoch moves on.
// A read failure drops the connection to StateAbsent; there is no retry.
func (m *Manager) readPump(sock Socket, epoch uint64) {
	for {
		data, err := sock.ReadMessage()
		if err != nil {
			m.mu.Lock()
			stale := m.epoch != epoch
			if !stale {
				m.closeLocked()
			}
			onState, status := m.onState, Status{State: m.state}
			m.mu.Unlock()

			if !stale {
				log.Printf("realtime: connection lost: %v", err)
				fireState(onState, status)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("realtime: dropping malformed frame: %v", err)
			continue
		}
		m.dispatch(env.Event, env.Data)
	}
}

// =============================================================================
// EVENTS
// =============================================================================

// Subscribe registers fn for an event. The returned function cancels
// the subscription. Handlers run on the read pump goroutine.
func (m *Manager) Subscribe(event string, fn func(json.RawMessage)) func() {
	m.mu.Lock()
	if m.handlers[event] == nil {
		m.handlers[event] = make(map[int]func(json.RawMessage))
	}
	id := m.nextSub
	m.nextSub++
	m.handlers[event][id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.handlers[event], id)
		m.mu.Unlock()
	}
}

func (m *Manager) dispatch(event string, data json.RawMessage) {
	m.mu.Lock()
	fns := make([]func(json.RawMessage), 0, len(m.handlers[event]))
	for _, fn := range m.handlers[event] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(data)
	}
}

// Emit sends an event frame. Fails fast when no connection is open;
// the caller decides how to surface that.
func (m *Manager) Emit(event string, payload interface{}) error {
	m.mu.Lock()
	sock := m.sock
	open := m.state == StateOpen
	m.mu.Unlock()

	if !open || sock == nil {
		return ErrNotConnected
	}

	data, err := EncodeEnvelope(event, payload)
	if err != nil {
		return err
	}
	return sock.WriteMessage(data)
}

// EmitFetchRooms requests the room list for the connected user.
func (m *Manager) EmitFetchRooms() error {
	return m.Emit(EventFetchRooms, nil)
}

// EmitMessage sends a chat message frame.
func (m *Manager) EmitMessage(msg model.Message) error {
	return m.Emit(EventMessage, msg)
}

// fireState invokes the state callback outside the lock.
func fireState(fn func(Status), status Status) {
	if fn != nil {
		fn(status)
	}
}
