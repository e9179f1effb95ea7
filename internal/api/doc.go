// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the kindred backend.
//
// The backend authenticates with an HTTP-only session cookie, so the
// client carries a persistent cookie jar that survives process restarts.
// All requests share a single timeout and a capped response reader.
//
// # Key Types
//
//   - Client: HTTP client with session cookie persistence
//   - Jar: disk-backed cookie jar holding the session credential
//   - APIError: typed error carrying the backend's status and message
//
// # Usage
//
// Create a client and resolve the current session:
//
//	client, err := api.NewClient(cfg.API.BaseURL, timeout, config.CookiePath())
//	if err != nil { ... }
//	me, err := client.Me(ctx)
//	if errors.Is(err, api.ErrUnauthenticated) {
//	    // no valid session, prompt for login
//	}
//
// # Security
//
// Session cookies are never logged. The jar file is written with 0600
// permissions because it holds the live session credential.
package api
