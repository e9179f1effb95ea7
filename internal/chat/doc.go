// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds the room directory, the client-side state of every
// conversation the server has confirmed.
//
// The directory enforces a small set of rules. Rooms exist only after
// the server announced them; an inbound message can never create one.
// Insertion is idempotent and order-independent, so replayed or
// reordered directory snapshots converge on the same state. Message
// logs are append-only and ordered by arrival, with one exception: a
// history fetch replaces a room's log wholesale. Identity changes clear
// the whole directory so conversations never leak between sessions.
package chat
