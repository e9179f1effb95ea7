// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kindred-tui/internal/app"
	chatdir "github.com/jeranaias/kindred-tui/internal/chat"
	"github.com/jeranaias/kindred-tui/internal/config"
	"github.com/jeranaias/kindred-tui/internal/model"
	"github.com/jeranaias/kindred-tui/internal/realtime"
	"github.com/jeranaias/kindred-tui/internal/session"
	"github.com/jeranaias/kindred-tui/internal/ui/styles"
)

type fakeAuth struct{ identity *model.Identity }

func (f *fakeAuth) Me(ctx context.Context) (*model.Identity, error) { return f.identity, nil }
func (f *fakeAuth) Logout(ctx context.Context) error                { return nil }

type fakeSocket struct{ in chan []byte }

func (s *fakeSocket) ReadMessage() ([]byte, error) {
	data, ok := <-s.in
	if !ok {
		return nil, errors.New("closed")
	}
	return data, nil
}
func (s *fakeSocket) WriteMessage([]byte) error { return nil }
func (s *fakeSocket) Close() error              { return nil }

type fakeDialer struct{}

func (fakeDialer) Dial(ctx context.Context, url string) (realtime.Socket, error) {
	return &fakeSocket{in: make(chan []byte)}, nil
}

type fakeBackend struct {
	history []model.Message
}

func (f *fakeBackend) RoomHistory(ctx context.Context, roomKey string) ([]model.Message, error) {
	return f.history, nil
}
func (f *fakeBackend) Unmatch(ctx context.Context, candidateID string) error { return nil }

func newTestModel(t *testing.T) *Model {
	t.Helper()

	cfg := config.Default()
	appCtx := app.NewContext(cfg,
		session.NewManager(&fakeAuth{identity: &model.Identity{ID: "u1", Name: "Me"}}),
		realtime.NewManager("ws://test", fakeDialer{}),
		chatdir.NewDirectory(),
		&fakeBackend{})

	m := New(appCtx, styles.NewTheme("dark"))
	t.Cleanup(m.Close)

	appCtx.Session.Refresh(context.Background())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func addRoom(m *Model, counterpartID, roomName, counterpartName string) {
	entry := model.RoomListEntry{UserID: counterpartID}
	entry.Room.RoomName = roomName
	entry.Room.ToName.Name = counterpartName
	m.app.Directory.ApplyRoomList([]model.RoomListEntry{entry})
}

func TestSelectCounterpartUnknownShowsToast(t *testing.T) {
	m := newTestModel(t)

	m.Update(SelectCounterpartMsg{ID: "u9"})

	if m.activeKey != "" {
		t.Errorf("activeKey = %q, selection must not change", m.activeKey)
	}
	if m.toasts.Len() != 1 {
		t.Fatalf("toasts = %d, want 1", m.toasts.Len())
	}
	if view := m.toasts.View(m.theme); !strings.Contains(view, "Room does not exist") {
		t.Errorf("toast view = %q", view)
	}
}

func TestSelectCounterpartOpensRoom(t *testing.T) {
	m := newTestModel(t)
	addRoom(m, "u2", "u1-u2", "Ada")

	m.Update(SelectCounterpartMsg{ID: "u2"})

	if m.activeKey != "u1-u2" {
		t.Errorf("activeKey = %q, want u1-u2", m.activeKey)
	}
	if m.focus != focusInput {
		t.Error("focus should move to the input")
	}
	if m.toasts.Len() != 0 {
		t.Error("no toast expected on a successful selection")
	}
}

func TestSidebarCursorClamped(t *testing.T) {
	m := newTestModel(t)
	addRoom(m, "u2", "u1-u2", "Ada")
	addRoom(m, "u3", "u1-u3", "Cal")

	down := tea.KeyMsg{Type: tea.KeyDown}
	m.Update(down)
	m.Update(down)
	m.Update(down)
	if m.selected != 1 {
		t.Errorf("selected = %d, want clamped to 1", m.selected)
	}

	up := tea.KeyMsg{Type: tea.KeyUp}
	m.Update(up)
	m.Update(up)
	m.Update(up)
	if m.selected != 0 {
		t.Errorf("selected = %d, want clamped to 0", m.selected)
	}
}

func TestRetractedRoomClosesConversation(t *testing.T) {
	m := newTestModel(t)
	addRoom(m, "u2", "u1-u2", "Ada")
	m.Update(SelectCounterpartMsg{ID: "u2"})

	m.app.Directory.RemoveByCounterpart("u2")
	m.Update(updatedMsg{})

	if m.activeKey != "" {
		t.Errorf("activeKey = %q after retraction, want empty", m.activeKey)
	}
}

func TestSendWithoutSelectionShowsToast(t *testing.T) {
	m := newTestModel(t)
	m.focus = focusInput
	m.input.Focus()
	m.input.SetValue("hello")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.toasts.Len() != 1 {
		t.Errorf("toasts = %d, want 1", m.toasts.Len())
	}
}

func TestSendOfflineShowsToast(t *testing.T) {
	m := newTestModel(t)
	addRoom(m, "u2", "u1-u2", "Ada")
	m.Update(SelectCounterpartMsg{ID: "u2"})

	// Drop the connection; the send must fail without retrying.
	m.app.Realtime.Close()

	m.input.SetValue("hello")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if view := m.toasts.View(m.theme); !strings.Contains(view, "offline") {
		t.Errorf("toast view = %q, want offline notice", view)
	}
}

func TestSendAppendsToLog(t *testing.T) {
	m := newTestModel(t)
	addRoom(m, "u2", "u1-u2", "Ada")
	m.Update(SelectCounterpartMsg{ID: "u2"})

	m.input.SetValue("hello there")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	room, _ := m.app.Directory.Room("u1-u2")
	if len(room.Messages) != 1 || room.Messages[0].Body != "hello there" {
		t.Errorf("log = %+v", room.Messages)
	}
	if m.input.Value() != "" {
		t.Error("draft should be cleared after a send")
	}
}

func TestViewRendersRooms(t *testing.T) {
	m := newTestModel(t)
	addRoom(m, "u2", "u1-u2", "Ada")

	view := m.View()
	if !strings.Contains(view, "Ada") {
		t.Error("sidebar should show the counterpart name")
	}
	if !strings.Contains(view, "kindred") {
		t.Error("header should carry the brand")
	}
}
