// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// MESSAGES
// =============================================================================

// updatedMsg means the directory, connection, or session changed.
type updatedMsg struct{}

// sessionRefreshedMsg means the startup session resolution finished.
type sessionRefreshedMsg struct{}

// historyLoadedMsg carries the outcome of a history fetch.
type historyLoadedMsg struct {
	roomKey string
	err     error
}

// SelectCounterpartMsg asks the chat screen to open the conversation
// with a counterpart, typically after a match elsewhere in the app.
type SelectCounterpartMsg struct {
	ID string
}

// =============================================================================
// COMMANDS
// =============================================================================

// listenForUpdates blocks until the app layer reports a change, then
// re-arms itself from Update.
func (m *Model) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return updatedMsg{}
	}
}

// refreshSession resolves the persisted session. The session manager
// drives the connection and directory through the app wiring; the UI
// only needs to know when it is done.
func (m *Model) refreshSession() tea.Cmd {
	return func() tea.Msg {
		m.app.Session.Refresh(context.Background())
		return sessionRefreshedMsg{}
	}
}

// fetchHistory loads a room's transcript in the background.
func (m *Model) fetchHistory(roomKey string) tea.Cmd {
	return func() tea.Msg {
		err := m.app.FetchHistory(context.Background(), roomKey)
		return historyLoadedMsg{roomKey: roomKey, err: err}
	}
}
