// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation transcripts locally.
//
// The archive is a SQLite database under the kindred config directory.
// Archiving a room stores a point-in-time snapshot of its transcript;
// archiving the same room again replaces the previous snapshot. The
// archive is read with the kindred archive subcommand and is the only
// place a conversation survives after an unmatch removes its room.
package storage
