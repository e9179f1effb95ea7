// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the kindred client.
//
// # Key Types
//
//   - Identity: the session-verified profile of the signed-in user
//   - Message: a single chat message, immutable once created
//   - Room: a conversation channel with exactly one counterpart
//   - RoomDescriptor: the server's wire shape for announcing a room
//   - RoomListEntry: a directory snapshot element pairing a counterpart
//     id with its room
//
// # Room Keys
//
// Every room is identified by a canonical key derived from the two
// participant ids. The key is order-independent: both sides of a match
// derive the same key before the server has ever named the room.
//
//	key := model.RoomKey("u2", "u1") // "u1-u2"
//
// All directory bookkeeping and history fetches are keyed by this value.
package model
