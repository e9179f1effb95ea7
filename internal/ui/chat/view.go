// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kindred-tui/internal/model"
	"github.com/jeranaias/kindred-tui/internal/util"
)

const (
	headerHeight    = 1
	inputHeight     = 2
	statusBarHeight = 1
)

// resize recomputes the pane layout for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.statusbar.Width = width

	sidebarWidth := m.app.Config.UI.SidebarWidth
	convoWidth := width - sidebarWidth - 3
	convoHeight := height - headerHeight - inputHeight - statusBarHeight
	if convoWidth < 10 {
		convoWidth = 10
	}
	if convoHeight < 3 {
		convoHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(convoWidth, convoHeight)
		m.ready = true
	} else {
		m.viewport.Width = convoWidth
		m.viewport.Height = convoHeight
	}
	m.input.Width = convoWidth - 4

	m.refreshConversation()
}

// refreshConversation re-renders the open room's log into the viewport.
func (m *Model) refreshConversation() {
	if !m.ready || m.activeKey == "" {
		return
	}
	room, ok := m.app.Directory.Room(m.activeKey)
	if !ok {
		return
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderLog(room))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// renderLog renders a room's messages in log order.
func (m *Model) renderLog(room model.Room) string {
	if len(room.Messages) == 0 {
		return m.theme.EmptyConvo.Render("No messages yet. Say hi!")
	}

	self := m.app.Directory.Self()
	var b strings.Builder
	for _, msg := range room.Messages {
		meta := m.theme.BubbleMeta.Render(msg.CreatedAt.Local().Format("15:04"))
		if msg.From == self {
			b.WriteString(m.theme.SelfBubble.Render("you "+meta) + "\n")
			b.WriteString(m.theme.SelfBubble.Render(msg.Body) + "\n")
		} else {
			name := room.Counterpart.Name
			if name == "" {
				name = msg.From
			}
			b.WriteString(m.theme.PeerBubble.Render(name+" ") + meta + "\n")
			b.WriteString(m.theme.PeerBubble.Render(msg.Body) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderSidebar renders the room list with the cursor and active marks.
func (m *Model) renderSidebar() string {
	width := m.app.Config.UI.SidebarWidth
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Matches") + "\n\n")

	rooms := m.app.Directory.Rooms()
	if len(rooms) == 0 {
		b.WriteString(m.theme.RoomPreview.Render("No conversations yet"))
	}

	for i, room := range rooms {
		name := room.Counterpart.Name
		if name == "" {
			name = room.CounterpartID
		}
		name = util.TruncateWidth(name, width-4)

		style := m.theme.RoomItem
		if i == m.selected && m.focus == focusRooms {
			style = m.theme.RoomItemSelected
		}
		marker := "  "
		if room.Key == m.activeKey {
			marker = "* "
		}
		b.WriteString(style.Render(marker+name) + "\n")

		if last, ok := room.LastMessage(); ok {
			preview := util.TruncateWidth(last.Body, width-4)
			b.WriteString(m.theme.RoomPreview.Render("  "+preview) + "\n")
		}
	}

	return m.theme.Sidebar.
		Width(width).
		Height(m.height - headerHeight - statusBarHeight).
		Render(b.String())
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	title := "kindred"
	if m.activeKey != "" {
		if room, ok := m.app.Directory.Room(m.activeKey); ok && room.Counterpart.Name != "" {
			title = room.Counterpart.Name
		}
	}
	header := m.theme.Header.Width(m.width).Render(
		m.theme.Brand.Render("kindred") + "  " + title)

	convo := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.theme.InputContainer.Width(m.viewport.Width).Render(
			m.theme.InputPrompt.Render("> ")+m.input.View()),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), " ", convo)

	status := m.statusbar.View(m.theme, m.app.Realtime.Status().State, m.selfName())

	out := lipgloss.JoinVertical(lipgloss.Left, header, body, status)
	if toasts := m.toasts.View(m.theme); toasts != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, toasts)
	}
	return out
}

func (m *Model) selfName() string {
	if identity := m.app.Session.Identity(); identity != nil {
		return identity.Name
	}
	return ""
}
