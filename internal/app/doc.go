// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app assembles the client.
//
// The Context holds the session manager, the realtime connection, the
// room directory, and the optional transcript archive, and owns the
// wiring between them: an identity change resets the directory and
// reconciles the connection, an open connection requests the room list,
// and incoming frames land in the directory. The UI only ever talks to
// the Context.
package app
