// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROOM TYPES
// =============================================================================

// RoomDescriptor is the server's wire shape for announcing a room, carried
// by both the directory snapshot and the chat-unlocked event.
type RoomDescriptor struct {
	// RoomName is the server-assigned room name. It matches the canonical
	// key derived from the two participant ids.
	RoomName string `json:"roomName"`

	// ToName describes the counterpart for display purposes.
	ToName Counterpart `json:"toName"`
}

// RoomListEntry is one element of the server's directory snapshot,
// pairing a counterpart's user id with the room it opens.
type RoomListEntry struct {
	UserID string         `json:"userId"`
	Room   RoomDescriptor `json:"room"`
}

// Counterpart is the display information for the other participant.
type Counterpart struct {
	Name   string `json:"name"`
	Avatar struct {
		URL string `json:"url"`
	} `json:"avatar"`
}

// Room is a conversation channel between the current identity and exactly
// one counterpart. Rooms are never created speculatively by the client;
// they exist only after the server has confirmed them through a directory
// snapshot or a chat-unlocked notification.
type Room struct {
	// Key is the canonical room key; unique within the directory.
	Key string

	// CounterpartID is the other participant's user id.
	CounterpartID string

	// Counterpart holds the server-supplied display name and avatar.
	Counterpart Counterpart

	// Messages is the ordered message log. Log order is append order;
	// no timestamp-based reordering is performed.
	Messages []Message
}

// LastMessage returns the most recent message, or a zero Message when the
// log is empty.
func (r *Room) LastMessage() (Message, bool) {
	if len(r.Messages) == 0 {
		return Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}
