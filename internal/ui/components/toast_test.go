// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/kindred-tui/internal/ui/styles"
)

func TestToastStackPushAndExpire(t *testing.T) {
	var stack ToastStack

	a := NewErrorToast("connection lost")
	b := NewStatusToast("history loaded")

	if cmd := stack.Push(a); cmd == nil {
		t.Fatal("Push must return an expiry command")
	}
	stack.Push(b)

	if stack.Len() != 2 {
		t.Fatalf("Len = %d, want 2", stack.Len())
	}

	stack.Expire(a.ID)
	if stack.Len() != 1 {
		t.Errorf("Len = %d after expire, want 1", stack.Len())
	}

	// Expiring an unknown id is harmless.
	stack.Expire(a.ID)
	if stack.Len() != 1 {
		t.Errorf("Len = %d, want 1", stack.Len())
	}

	stack.DismissAll()
	if stack.Len() != 0 {
		t.Errorf("Len = %d after DismissAll, want 0", stack.Len())
	}
}

func TestToastStackView(t *testing.T) {
	theme := styles.NewTheme("dark")
	var stack ToastStack

	if stack.View(theme) != "" {
		t.Error("empty stack must render nothing")
	}

	stack.Push(NewErrorToast("room does not exist"))
	out := stack.View(theme)
	if !strings.Contains(out, "room does not exist") {
		t.Errorf("view missing message: %q", out)
	}
}

func TestToastIDsAreUnique(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 10; i++ {
		toast := NewStatusToast("x")
		if seen[toast.ID] {
			t.Fatalf("duplicate toast id %d", toast.ID)
		}
		seen[toast.ID] = true
	}
}
