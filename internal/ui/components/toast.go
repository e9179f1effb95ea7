// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the kindred TUI.
//
// This file implements non-blocking toasts. Unlike modal error dialogs,
// toasts appear at the bottom of the screen and auto-dismiss, so the
// user can keep chatting while a failure is displayed.
package components

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kindred-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast
	ToastKindError
	// ToastKindWarning is a warning toast
	ToastKindWarning
	// ToastKindSuccess is a success toast
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts
// (longer, to leave time to read).
const ErrorToastDuration = 8 * time.Second

// Toast is a single non-blocking notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

var toastCounter atomic.Int64

func nextToastID() int {
	return int(toastCounter.Add(1))
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastKindError,
		CreatedAt: time.Now(),
		Duration:  ErrorToastDuration,
	}
}

// NewStatusToast creates an informational toast.
func NewStatusToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastKindStatus,
		CreatedAt: time.Now(),
		Duration:  DefaultToastDuration,
	}
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastKindSuccess,
		CreatedAt: time.Now(),
		Duration:  DefaultToastDuration,
	}
}

// =============================================================================
// TOAST STACK
// =============================================================================

// ToastExpiredMsg asks the stack to drop a toast.
type ToastExpiredMsg struct {
	ID int
}

// ToastStack holds the active toasts, newest last.
type ToastStack struct {
	toasts []Toast
}

// Push adds a toast and returns the command that expires it.
func (s *ToastStack) Push(toast Toast) tea.Cmd {
	s.toasts = append(s.toasts, toast)
	id := toast.ID
	return tea.Tick(toast.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Expire removes the toast with the given id.
func (s *ToastStack) Expire(id int) {
	for i, toast := range s.toasts {
		if toast.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// DismissAll drops every active toast.
func (s *ToastStack) DismissAll() {
	s.toasts = nil
}

// Len returns the number of active toasts.
func (s *ToastStack) Len() int {
	return len(s.toasts)
}

// View renders the active toasts, one per line.
func (s *ToastStack) View(theme *styles.Theme) string {
	if len(s.toasts) == 0 {
		return ""
	}

	out := ""
	for i, toast := range s.toasts {
		if i > 0 {
			out += "\n"
		}
		out += toastStyle(theme, toast.Kind).Render(toast.Message)
	}
	return out
}

func toastStyle(theme *styles.Theme, kind ToastKind) lipgloss.Style {
	switch kind {
	case ToastKindError:
		return theme.ToastError
	case ToastKindWarning:
		return theme.ToastWarning
	case ToastKindSuccess:
		return theme.ToastSuccess
	default:
		return theme.ToastStatus
	}
}
