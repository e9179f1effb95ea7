// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the kindred TUI.
//
// The palette is defined once as adaptive colors and assembled into a
// Theme of Lip Gloss styles at startup. Theme construction detects the
// terminal's color capability and background via termenv; the ui.theme
// config value can force dark or light.
package styles
