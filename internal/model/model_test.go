// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
)

// =============================================================================
// ROOM KEY TESTS
// =============================================================================

func TestRoomKey_OrderIndependent(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want string
	}{
		{
			name: "already sorted",
			a:    "u1",
			b:    "u2",
			want: "u1-u2",
		},
		{
			name: "reversed",
			a:    "u2",
			b:    "u1",
			want: "u1-u2",
		},
		{
			name: "object ids",
			a:    "66f0a2",
			b:    "12bc99",
			want: "12bc99-66f0a2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoomKey(tc.a, tc.b); got != tc.want {
				t.Errorf("RoomKey(%q, %q) = %q, want %q", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestRoomKey_BothSidesAgree(t *testing.T) {
	if RoomKey("alice", "bob") != RoomKey("bob", "alice") {
		t.Error("RoomKey must be identical from either participant's view")
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewOutbound(t *testing.T) {
	msg := NewOutbound("u1", "u2", "  hey there ")

	if msg.ID == "" {
		t.Error("NewOutbound should assign a local id")
	}
	if msg.From != "u1" || msg.To != "u2" {
		t.Errorf("participants = (%q, %q), want (u1, u2)", msg.From, msg.To)
	}
	if msg.Body != "hey there" {
		t.Errorf("Body = %q, want trimmed text", msg.Body)
	}
	if msg.RoomKey != "u1-u2" {
		t.Errorf("RoomKey = %q, want u1-u2", msg.RoomKey)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMessage_IsBlank(t *testing.T) {
	if !(Message{Body: "   "}).IsBlank() {
		t.Error("whitespace-only body should be blank")
	}
	if (Message{Body: "hi"}).IsBlank() {
		t.Error("non-empty body should not be blank")
	}
}

// =============================================================================
// ROOM TESTS
// =============================================================================

func TestRoom_LastMessage(t *testing.T) {
	r := &Room{Key: "u1-u2"}

	if _, ok := r.LastMessage(); ok {
		t.Error("empty room should report no last message")
	}

	r.Messages = append(r.Messages, Message{Body: "first"}, Message{Body: "second"})
	last, ok := r.LastMessage()
	if !ok || last.Body != "second" {
		t.Errorf("LastMessage = %+v, want the second append", last)
	}
}
