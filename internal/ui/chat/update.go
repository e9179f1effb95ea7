// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kindred-tui/internal/api"
	"github.com/jeranaias/kindred-tui/internal/app"
	"github.com/jeranaias/kindred-tui/internal/realtime"
	"github.com/jeranaias/kindred-tui/internal/ui/components"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case updatedMsg:
		m.clampCursor()
		m.refreshConversation()
		cmds = append(cmds, m.listenForUpdates())

	case sessionRefreshedMsg:
		if snap := m.app.Session.Snapshot(); snap.Err != "" {
			cmds = append(cmds, m.toasts.Push(components.NewErrorToast(snap.Err)))
		}

	case historyLoadedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.toasts.Push(components.NewErrorToast(
				api.UserMessage(msg.err, "Could not load the conversation"))))
		} else if msg.roomKey == m.activeKey {
			m.refreshConversation()
			m.viewport.GotoBottom()
		}

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)

	case SelectCounterpartMsg:
		cmds = append(cmds, m.selectCounterpart(msg.ID)...)

	case tea.KeyMsg:
		var handled bool
		var keyCmds []tea.Cmd
		handled, keyCmds = m.handleKey(msg)
		cmds = append(cmds, keyCmds...)
		if handled {
			return m, tea.Batch(cmds...)
		}
	}

	// Unhandled input flows to the focused widget.
	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes global and pane-specific bindings. It reports
// whether the key was consumed.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, []tea.Cmd) {
	var cmds []tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Quit):
		return true, []tea.Cmd{tea.Quit}

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusRooms {
			m.focus = focusInput
			m.input.Focus()
		} else {
			m.focus = focusRooms
			m.input.Blur()
		}
		return true, nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.toasts.Len() > 0 {
			m.toasts.DismissAll()
			return true, nil
		}
		if m.focus == focusInput {
			m.focus = focusRooms
			m.input.Blur()
			return true, nil
		}
		return false, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return true, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return true, nil
	}

	if m.focus == focusRooms {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
			return true, nil

		case key.Matches(msg, m.keys.Down):
			if m.selected < m.app.Directory.Len()-1 {
				m.selected++
			}
			return true, nil

		case key.Matches(msg, m.keys.Open):
			if roomKey := m.cursorRoomKey(); roomKey != "" {
				m.activeKey = roomKey
				m.focus = focusInput
				m.input.Focus()
				m.refreshConversation()
				cmds = append(cmds, m.fetchHistory(roomKey))
			}
			return true, cmds
		}
		return false, nil
	}

	// Input pane.
	if key.Matches(msg, m.keys.Send) {
		return true, m.send()
	}
	return false, nil
}

// selectCounterpart opens the conversation for a counterpart id. When
// no confirmed room exists the selection does not change and the user
// sees a toast instead.
func (m *Model) selectCounterpart(id string) []tea.Cmd {
	room, ok := m.app.Directory.RoomByCounterpart(id)
	if !ok {
		return []tea.Cmd{m.toasts.Push(components.NewErrorToast("Room does not exist"))}
	}

	m.activeKey = room.Key
	m.focus = focusInput
	m.input.Focus()
	m.syncCursor(room.Key)
	m.refreshConversation()
	return []tea.Cmd{m.fetchHistory(room.Key)}
}

// send transmits the draft. Failures surface as toasts; an empty draft
// is silently ignored.
func (m *Model) send() []tea.Cmd {
	counterpart := m.activeCounterpartID()
	if counterpart == "" {
		return []tea.Cmd{m.toasts.Push(components.NewErrorToast("Pick a conversation first"))}
	}

	_, err := m.app.Send(counterpart, m.input.Value())
	switch {
	case err == nil:
		m.input.Reset()
		m.refreshConversation()
		m.viewport.GotoBottom()
		return nil
	case errors.Is(err, app.ErrEmptyMessage):
		return nil
	case errors.Is(err, app.ErrRateLimited):
		return []tea.Cmd{m.toasts.Push(components.NewErrorToast("Slow down a little"))}
	case errors.Is(err, app.ErrMessageTooLong):
		return []tea.Cmd{m.toasts.Push(components.NewErrorToast("Message is too long"))}
	case errors.Is(err, app.ErrNoRoom):
		return []tea.Cmd{m.toasts.Push(components.NewErrorToast("Room does not exist"))}
	case errors.Is(err, realtime.ErrNotConnected):
		return []tea.Cmd{m.toasts.Push(components.NewErrorToast("You are offline"))}
	default:
		return []tea.Cmd{m.toasts.Push(components.NewErrorToast("Could not send the message"))}
	}
}

// clampCursor keeps the sidebar cursor inside the room list as rooms
// appear and disappear.
func (m *Model) clampCursor() {
	n := m.app.Directory.Len()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	// Drop the open conversation if its room was retracted.
	if m.activeKey != "" {
		if _, ok := m.app.Directory.Room(m.activeKey); !ok {
			m.activeKey = ""
			m.viewport.SetContent("")
		}
	}
}

// syncCursor moves the sidebar cursor to the room with the given key.
func (m *Model) syncCursor(roomKey string) {
	for i, room := range m.app.Directory.Rooms() {
		if room.Key == roomKey {
			m.selected = i
			return
		}
	}
}
