// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package realtime manages the websocket connection to the chat server.
//
// At most one connection exists per process. The connection is tagged
// with a user ID at dial time via the userId query parameter and keeps
// that tag for its whole lifetime; an identity change always closes the
// old connection before dialing a new one. Dropped connections are not
// retried automatically; the session layer decides when to reconnect by
// calling Apply again.
//
// Frames are JSON envelopes of the form {"event": ..., "data": ...}.
// Handlers registered with Subscribe run on the read pump goroutine and
// must not block.
package realtime
