// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT STYLES
	// ==========================================================================

	App    lipgloss.Style
	Header lipgloss.Style
	Brand  lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar          lipgloss.Style
	SidebarTitle     lipgloss.Style
	RoomItem         lipgloss.Style
	RoomItemSelected lipgloss.Style
	RoomPreview      lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	SelfBubble    lipgloss.Style
	PeerBubble    lipgloss.Style
	BubbleMeta    lipgloss.Style
	EmptyConvo    lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar       lipgloss.Style
	StatusConnected lipgloss.Style
	StatusDialing   lipgloss.Style
	StatusOffline   lipgloss.Style
	ShortcutKey     lipgloss.Style
	ShortcutDesc    lipgloss.Style

	// ==========================================================================
	// TOAST STYLES
	// ==========================================================================

	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastStatus  lipgloss.Style
	ToastSuccess lipgloss.Style
}

// NewTheme builds a theme using the terminal's detected capabilities.
// mode is "auto", "dark", or "light"; anything but auto overrides the
// background detection.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor

	isDark := termenv.HasDarkBackground()
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.App = lipgloss.NewStyle().Background(Surface)
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.Brand = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)
	t.SidebarTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true).
		Padding(0, 1)
	t.RoomItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)
	t.RoomItemSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 1)
	t.RoomPreview = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.SelfBubble = lipgloss.NewStyle().
		Foreground(Cyan).
		PaddingLeft(4)
	t.PeerBubble = lipgloss.NewStyle().
		Foreground(Violet)
	t.BubbleMeta = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.EmptyConvo = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusConnected = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusDialing = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.StatusOffline = lipgloss.NewStyle().Foreground(TextMuted)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.ToastError = toastBase().BorderForeground(Rose).Foreground(Rose)
	t.ToastWarning = toastBase().BorderForeground(Amber).Foreground(Amber)
	t.ToastStatus = toastBase().BorderForeground(Cyan).Foreground(TextPrimary)
	t.ToastSuccess = toastBase().BorderForeground(Emerald).Foreground(Emerald)

	return t
}

func toastBase() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)
}
