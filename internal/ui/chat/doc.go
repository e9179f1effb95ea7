// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat screen for the kindred TUI.
//
// The screen is a bubbletea model with three panes: the room sidebar,
// the conversation viewport, and the draft input. It holds no chat
// state of its own; everything renders from the app context's room
// directory, and change notifications from the app layer are funneled
// into the event loop through a single coalescing channel.
package chat
