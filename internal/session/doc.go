// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the signed-in identity.
//
// The Manager is the single authority on who the current user is. It
// resolves the persisted session cookie via the REST client, exposes
// immutable Snapshots, and notifies subscribers on every transition.
// A rejected session cookie is the ordinary signed-out state and never
// surfaces as an error; only transport failures do.
//
// Each identity change bumps a generation counter. Asynchronous work
// records the generation it started under and drops its result if the
// identity changed while it was in flight.
package session
