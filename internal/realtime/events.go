// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/kindred-tui/internal/model"
)

// Wire event names. The server and client agree on these strings.
const (
	// EventFetchRooms asks the server for the caller's room list.
	EventFetchRooms = "fetch-rooms"

	// EventRooms carries the full room list in response to EventFetchRooms.
	EventRooms = "rooms"

	// EventChatUnlocked announces a newly unlocked room, pushed when a
	// mutual match opens a conversation.
	EventChatUnlocked = "chat-unlocked"

	// EventMessage carries a single chat message, both directions.
	EventMessage = "message"
)

// Envelope is the wire framing for every realtime frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeEnvelope frames an event and payload for the wire.
func EncodeEnvelope(event string, payload interface{}) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// DecodeRooms parses an EventRooms payload: a list of counterpart id and
// room descriptor pairs.
func DecodeRooms(data json.RawMessage) ([]model.RoomListEntry, error) {
	var entries []model.RoomListEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse rooms payload: %w", err)
	}
	return entries, nil
}

// ChatUnlocked is the payload of an EventChatUnlocked frame. Users
// holds both participant IDs; the client works out which one is the
// counterpart.
type ChatUnlocked struct {
	Users []string             `json:"users"`
	Room  model.RoomDescriptor `json:"room"`
}

// DecodeChatUnlocked parses an EventChatUnlocked payload.
func DecodeChatUnlocked(data json.RawMessage) (ChatUnlocked, error) {
	var unlocked ChatUnlocked
	if err := json.Unmarshal(data, &unlocked); err != nil {
		return ChatUnlocked{}, fmt.Errorf("failed to parse chat-unlocked payload: %w", err)
	}
	return unlocked, nil
}

// DecodeMessage parses an EventMessage payload.
func DecodeMessage(data json.RawMessage) (model.Message, error) {
	var msg model.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return model.Message{}, fmt.Errorf("failed to parse message payload: %w", err)
	}
	return msg, nil
}
