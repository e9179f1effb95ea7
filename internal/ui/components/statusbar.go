// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kindred-tui/internal/realtime"
	"github.com/jeranaias/kindred-tui/internal/ui/styles"
	"github.com/jeranaias/kindred-tui/internal/util"
)

// StatusBar renders the bottom status line: connection state, signed-in
// user, and key hints.
type StatusBar struct {
	Width int
}

// View renders the bar for the given connection state and user name.
func (b StatusBar) View(theme *styles.Theme, state realtime.State, userName string) string {
	var conn string
	switch state {
	case realtime.StateOpen:
		conn = theme.StatusConnected.Render("● online")
	case realtime.StateConnecting:
		conn = theme.StatusDialing.Render("◌ connecting")
	default:
		conn = theme.StatusOffline.Render("○ offline")
	}

	who := ""
	if userName != "" {
		who = "  " + theme.ShortcutDesc.Render(userName)
	}

	hints := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.ShortcutKey.Render("tab"), theme.ShortcutDesc.Render(" rooms  "),
		theme.ShortcutKey.Render("enter"), theme.ShortcutDesc.Render(" send  "),
		theme.ShortcutKey.Render("ctrl+q"), theme.ShortcutDesc.Render(" quit"),
	)

	left := conn + who
	gap := b.Width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if gap < 1 {
		return theme.StatusBar.Render(util.TruncateWidth(left, b.Width-2))
	}
	return theme.StatusBar.Render(left + util.PadRight("", gap) + hints)
}
