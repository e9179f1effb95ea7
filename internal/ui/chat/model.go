// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kindred-tui/internal/app"
	"github.com/jeranaias/kindred-tui/internal/realtime"
	"github.com/jeranaias/kindred-tui/internal/session"
	"github.com/jeranaias/kindred-tui/internal/ui/components"
	"github.com/jeranaias/kindred-tui/internal/ui/styles"
)

// focusArea tracks which pane owns keyboard input.
type focusArea int

const (
	focusRooms focusArea = iota
	focusInput
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the root bubbletea model for the chat screen: a room sidebar,
// the conversation viewport, the draft input, and the status bar.
type Model struct {
	app   *app.Context
	theme *styles.Theme
	keys  KeyMap

	focus     focusArea
	selected  int    // sidebar cursor
	activeKey string // open room key, "" when none

	viewport  viewport.Model
	input     textinput.Model
	statusbar components.StatusBar
	toasts    components.ToastStack

	// updates coalesces change notifications from the app layer into
	// the bubbletea loop.
	updates chan struct{}
	cancels []func()

	width  int
	height int
	ready  bool
}

// New creates the chat model on top of a wired app context.
func New(appCtx *app.Context, theme *styles.Theme) *Model {
	input := textinput.New()
	input.Placeholder = "Say something kind..."
	input.CharLimit = appCtx.Config.Chat.MaxMessageLen
	input.Prompt = ""

	m := &Model{
		app:     appCtx,
		theme:   theme,
		keys:    DefaultKeyMap(),
		focus:   focusRooms,
		input:   input,
		updates: make(chan struct{}, 16),
	}

	// Anything that changes underneath the UI nudges the event loop.
	appCtx.Directory.SetChangeHandler(m.nudge)
	appCtx.SetStateObserver(func(realtime.Status) { m.nudge() })
	m.cancels = append(m.cancels, appCtx.Session.Subscribe(func(session.Snapshot) { m.nudge() }))

	return m
}

// nudge signals the event loop without blocking the caller.
func (m *Model) nudge() {
	select {
	case m.updates <- struct{}{}:
	default:
	}
}

// Close cancels the model's subscriptions.
func (m *Model) Close() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.listenForUpdates(),
		m.refreshSession(),
	)
}

// activeRoomKeyFor returns the room key to open for the sidebar cursor.
func (m *Model) cursorRoomKey() string {
	rooms := m.app.Directory.Rooms()
	if m.selected < 0 || m.selected >= len(rooms) {
		return ""
	}
	return rooms[m.selected].Key
}

// activeCounterpartID returns the counterpart of the open room.
func (m *Model) activeCounterpartID() string {
	if m.activeKey == "" {
		return ""
	}
	room, ok := m.app.Directory.Room(m.activeKey)
	if !ok {
		return ""
	}
	return room.CounterpartID
}
