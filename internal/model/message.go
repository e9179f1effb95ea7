// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat message. Messages are immutable once created.
//
// There are two creation paths: an optimistic local append on outbound send
// (NewOutbound) and an inbound decode from the realtime channel or a
// history fetch. The wire names match the server's payloads.
type Message struct {
	// ID is assigned locally for optimistic messages so the UI has a
	// stable handle. Inbound messages may arrive without one; no
	// cross-path deduplication is performed on it.
	ID string `json:"id,omitempty"`

	// From is the sender's user id.
	From string `json:"from"`

	// To is the recipient's user id.
	To string `json:"to"`

	// Body is the message text.
	Body string `json:"message"`

	// CreatedAt is the creation timestamp. Log position, not this value,
	// determines display order.
	CreatedAt time.Time `json:"createdAt"`

	// RoomKey names the room the message belongs to.
	RoomKey string `json:"room,omitempty"`
}

// NewOutbound builds an optimistic local message for an outbound send.
func NewOutbound(from, to, body string) Message {
	return Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Body:      strings.TrimSpace(body),
		CreatedAt: time.Now(),
		RoomKey:   RoomKey(from, to),
	}
}

// IsBlank reports whether the message body is empty or whitespace only.
func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Body) == ""
}

// =============================================================================
// ROOM KEY
// =============================================================================

// RoomKey derives the canonical room key for two participant ids.
// The key is order-independent: both participants compute the same value,
// so a room can be addressed before the server has announced its name.
func RoomKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}
