// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/kindred-tui/internal/chat"
	"github.com/jeranaias/kindred-tui/internal/config"
	"github.com/jeranaias/kindred-tui/internal/model"
	"github.com/jeranaias/kindred-tui/internal/realtime"
	"github.com/jeranaias/kindred-tui/internal/session"
)

// fakeSocket is an in-memory realtime.Socket.
type fakeSocket struct {
	in chan []byte

	mu     sync.Mutex
	writes [][]byte
	closed bool
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{in: make(chan []byte, 16)}
}

func (s *fakeSocket) ReadMessage() ([]byte, error) {
	data, ok := <-s.in
	if !ok {
		return nil, errors.New("socket closed")
	}
	return data, nil
}

func (s *fakeSocket) WriteMessage(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, data)
	return nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.in)
	}
	return nil
}

func (s *fakeSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSocket) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, frame := range s.writes {
		var env realtime.Envelope
		if json.Unmarshal(frame, &env) == nil {
			out = append(out, env.Event)
		}
	}
	return out
}

type fakeDialer struct {
	mu      sync.Mutex
	urls    []string
	sockets []*fakeSocket
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (realtime.Socket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = append(d.urls, url)
	sock := newFakeSocket()
	d.sockets = append(d.sockets, sock)
	return sock, nil
}

func (d *fakeDialer) socket(i int) *fakeSocket {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sockets[i]
}

func (d *fakeDialer) lastURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.urls) == 0 {
		return ""
	}
	return d.urls[len(d.urls)-1]
}

// fakeAuth is a scripted session.Authenticator.
type fakeAuth struct {
	mu       sync.Mutex
	identity *model.Identity
}

func (f *fakeAuth) Me(ctx context.Context) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error { return nil }

func (f *fakeAuth) set(identity *model.Identity) {
	f.mu.Lock()
	f.identity = identity
	f.mu.Unlock()
}

// fakeBackend is a scripted Backend.
type fakeBackend struct {
	history    []model.Message
	historyErr error
	onHistory  func() // runs while the call is "in flight"

	unmatchErr error
}

func (f *fakeBackend) RoomHistory(ctx context.Context, roomKey string) ([]model.Message, error) {
	if f.onHistory != nil {
		f.onHistory()
	}
	return f.history, f.historyErr
}

func (f *fakeBackend) Unmatch(ctx context.Context, candidateID string) error {
	return f.unmatchErr
}

type fixture struct {
	ctx     *Context
	auth    *fakeAuth
	dialer  *fakeDialer
	backend *fakeBackend
}

func newFixture() *fixture {
	cfg := config.Default()
	cfg.Chat.SendRatePerSec = 100
	cfg.Chat.SendBurst = 100
	cfg.Chat.MaxMessageLen = 500

	auth := &fakeAuth{}
	dialer := &fakeDialer{}
	backend := &fakeBackend{}

	ctx := NewContext(cfg,
		session.NewManager(auth),
		realtime.NewManager("ws://localhost:3001", dialer),
		chat.NewDirectory(),
		backend)

	return &fixture{ctx: ctx, auth: auth, dialer: dialer, backend: backend}
}

func (f *fixture) signIn(id string) {
	f.auth.set(&model.Identity{ID: id})
	f.ctx.Session.Refresh(context.Background())
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func roomsFrame(entries ...model.RoomListEntry) []byte {
	frame, _ := realtime.EncodeEnvelope(realtime.EventRooms, entries)
	return frame
}

func roomEntry(userID, roomName string) model.RoomListEntry {
	e := model.RoomListEntry{UserID: userID}
	e.Room.RoomName = roomName
	return e
}

func TestSignInConnectsAndFetchesRooms(t *testing.T) {
	f := newFixture()
	f.signIn("u1")

	if !strings.Contains(f.dialer.lastURL(), "userId=u1") {
		t.Errorf("dial URL = %q, want userId=u1", f.dialer.lastURL())
	}

	events := f.dialer.socket(0).events()
	if len(events) != 1 || events[0] != realtime.EventFetchRooms {
		t.Errorf("frames after open = %v, want one fetch-rooms", events)
	}
	if f.ctx.Directory.Self() != "u1" {
		t.Errorf("directory self = %q, want u1", f.ctx.Directory.Self())
	}
}

func TestRoomsFrameLandsInDirectory(t *testing.T) {
	f := newFixture()
	f.signIn("u1")

	entry := roomEntry("u2", "u1-u2")
	entry.Room.ToName.Name = "Ada"
	f.dialer.socket(0).in <- roomsFrame(entry)

	waitFor(t, "room to appear", func() bool { return f.ctx.Directory.Len() == 1 })

	room, ok := f.ctx.Directory.Room("u1-u2")
	if !ok || room.CounterpartID != "u2" {
		t.Errorf("room = %+v ok=%v", room, ok)
	}
}

func TestInboundMessageAppends(t *testing.T) {
	f := newFixture()
	f.signIn("u1")
	f.dialer.socket(0).in <- roomsFrame(roomEntry("u2", "u1-u2"))
	waitFor(t, "room", func() bool { return f.ctx.Directory.Len() == 1 })

	frame, _ := realtime.EncodeEnvelope(realtime.EventMessage,
		model.Message{From: "u2", To: "u1", Body: "hi", RoomKey: "u1-u2"})
	f.dialer.socket(0).in <- frame

	waitFor(t, "message", func() bool {
		room, _ := f.ctx.Directory.Room("u1-u2")
		return len(room.Messages) == 1
	})
}

func TestChatUnlockedFrameInsertsRoom(t *testing.T) {
	f := newFixture()
	f.signIn("u1")

	payload := realtime.ChatUnlocked{Users: []string{"u1", "u3"}}
	payload.Room.RoomName = "u1-u3"
	payload.Room.ToName.Name = "Cal"
	frame, _ := realtime.EncodeEnvelope(realtime.EventChatUnlocked, payload)
	f.dialer.socket(0).in <- frame

	waitFor(t, "unlocked room", func() bool { return f.ctx.Directory.Len() == 1 })
	room, _ := f.ctx.Directory.Room("u1-u3")
	if room.CounterpartID != "u3" || room.Counterpart.Name != "Cal" {
		t.Errorf("room = %+v", room)
	}
}

func TestIdentitySwitchResetsEverything(t *testing.T) {
	f := newFixture()
	f.signIn("u1")
	f.dialer.socket(0).in <- roomsFrame(roomEntry("u2", "u1-u2"))
	waitFor(t, "room", func() bool { return f.ctx.Directory.Len() == 1 })

	f.signIn("u9")

	if !f.dialer.socket(0).isClosed() {
		t.Error("old connection must be closed on identity switch")
	}
	if !strings.Contains(f.dialer.lastURL(), "userId=u9") {
		t.Errorf("new dial URL = %q, want userId=u9", f.dialer.lastURL())
	}
	if f.ctx.Directory.Len() != 0 {
		t.Error("directory must be empty after identity switch")
	}
	if f.ctx.Directory.Self() != "u9" {
		t.Errorf("directory self = %q, want u9", f.ctx.Directory.Self())
	}
}

func TestSignOutDisconnects(t *testing.T) {
	f := newFixture()
	f.signIn("u1")

	f.ctx.Session.Logout(context.Background())

	if !f.dialer.socket(0).isClosed() {
		t.Error("connection must be closed on sign-out")
	}
	if status := f.ctx.Realtime.Status(); status.State != realtime.StateAbsent {
		t.Errorf("state = %v, want absent", status.State)
	}
}

func TestFetchHistoryReplacesLog(t *testing.T) {
	f := newFixture()
	f.signIn("u1")
	f.dialer.socket(0).in <- roomsFrame(roomEntry("u2", "u1-u2"))
	waitFor(t, "room", func() bool { return f.ctx.Directory.Len() == 1 })

	f.ctx.Send("u2", "local draft")

	f.backend.history = []model.Message{
		{From: "u2", To: "u1", Body: "x"},
		{From: "u1", To: "u2", Body: "y"},
	}
	if err := f.ctx.FetchHistory(context.Background(), "u1-u2"); err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}

	room, _ := f.ctx.Directory.Room("u1-u2")
	if len(room.Messages) != 2 || room.Messages[0].Body != "x" {
		t.Errorf("log = %+v, want wholesale replacement", room.Messages)
	}
}

func TestStaleHistoryDiscardedAfterIdentitySwitch(t *testing.T) {
	f := newFixture()
	f.signIn("u1")
	f.dialer.socket(0).in <- roomsFrame(roomEntry("u2", "u1-u2"))
	waitFor(t, "room", func() bool { return f.ctx.Directory.Len() == 1 })

	f.backend.history = []model.Message{{From: "u2", To: "u1", Body: "old world"}}
	f.backend.onHistory = func() {
		// Identity changes while the request is in flight.
		f.signIn("u9")
	}

	if err := f.ctx.FetchHistory(context.Background(), "u1-u2"); err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}

	// The response belongs to the old identity and must not repopulate
	// the reset directory.
	if f.ctx.Directory.Len() != 0 {
		t.Error("stale history resurrected a room")
	}
}

func TestSendValidation(t *testing.T) {
	f := newFixture()

	if _, err := f.ctx.Send("u2", "hi"); !errors.Is(err, ErrSignedOut) {
		t.Errorf("signed-out send: err = %v, want ErrSignedOut", err)
	}

	f.signIn("u1")

	if _, err := f.ctx.Send("u2", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank send: err = %v, want ErrEmptyMessage", err)
	}
	if _, err := f.ctx.Send("u2", "hi"); !errors.Is(err, ErrNoRoom) {
		t.Errorf("roomless send: err = %v, want ErrNoRoom", err)
	}
	if _, err := f.ctx.Send("u2", strings.Repeat("a", 501)); !errors.Is(err, ErrMessageTooLong) {
		t.Errorf("oversize send: err = %v, want ErrMessageTooLong", err)
	}
}

func TestSendAppendsAndTransmits(t *testing.T) {
	f := newFixture()
	f.signIn("u1")
	f.dialer.socket(0).in <- roomsFrame(roomEntry("u2", "u1-u2"))
	waitFor(t, "room", func() bool { return f.ctx.Directory.Len() == 1 })

	msg, err := f.ctx.Send("u2", "  hello  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Body != "hello" || msg.RoomKey != "u1-u2" {
		t.Errorf("msg = %+v", msg)
	}

	room, _ := f.ctx.Directory.Room("u1-u2")
	if len(room.Messages) != 1 {
		t.Fatalf("log length = %d, want 1", len(room.Messages))
	}

	events := f.dialer.socket(0).events()
	if events[len(events)-1] != realtime.EventMessage {
		t.Errorf("last frame = %v, want message", events)
	}
}

func TestSendRateLimited(t *testing.T) {
	f := newFixture()
	f.ctx.limiter.SetLimit(1)
	f.ctx.limiter.SetBurst(1)

	f.signIn("u1")
	f.dialer.socket(0).in <- roomsFrame(roomEntry("u2", "u1-u2"))
	waitFor(t, "room", func() bool { return f.ctx.Directory.Len() == 1 })

	if _, err := f.ctx.Send("u2", "one"); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if _, err := f.ctx.Send("u2", "two"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("second send: err = %v, want ErrRateLimited", err)
	}
}

func TestUnmatchRetractsRoom(t *testing.T) {
	f := newFixture()
	f.signIn("u1")
	f.dialer.socket(0).in <- roomsFrame(roomEntry("u2", "u1-u2"))
	waitFor(t, "room", func() bool { return f.ctx.Directory.Len() == 1 })

	if err := f.ctx.Unmatch(context.Background(), "u2"); err != nil {
		t.Fatalf("Unmatch: %v", err)
	}
	if f.ctx.Directory.Len() != 0 {
		t.Error("room must be retracted after unmatch")
	}
}

func TestUnmatchServerFailureKeepsRoom(t *testing.T) {
	f := newFixture()
	f.signIn("u1")
	f.dialer.socket(0).in <- roomsFrame(roomEntry("u2", "u1-u2"))
	waitFor(t, "room", func() bool { return f.ctx.Directory.Len() == 1 })

	f.backend.unmatchErr = errors.New("boom")
	if err := f.ctx.Unmatch(context.Background(), "u2"); err == nil {
		t.Fatal("expected error")
	}
	if f.ctx.Directory.Len() != 1 {
		t.Error("room must survive a failed unmatch")
	}
}
