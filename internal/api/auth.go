// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jeranaias/kindred-tui/internal/model"
)

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// Me verifies the session cookie and returns the authenticated identity.
// Returns ErrUnauthenticated when no valid session exists.
func (c *Client) Me(ctx context.Context) (*model.Identity, error) {
	var env envelope
	if err := c.get(ctx, "/users/me", &env); err != nil {
		return nil, err
	}
	if !env.Success || len(env.Data) == 0 {
		return nil, ErrUnauthenticated
	}

	var identity model.Identity
	if err := json.Unmarshal(env.Data, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity: %w", err)
	}
	return &identity, nil
}

// Login authenticates with email and password. On success the server sets
// the session cookie on the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", body, nil); err != nil {
		return err
	}
	return c.PersistSession()
}

// Register creates a new account. The server may or may not establish a
// session; callers should follow up with Login or Me.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.post(ctx, "/auth/register", body, nil)
}

// Logout invalidates the server-side session and clears local cookies.
// The server call is best effort; local state is cleared regardless so the
// user always ends up signed out.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/auth/logout", nil, nil); err != nil {
		log.Printf("logout: server-side invalidation failed: %v", err)
	}
	return c.ClearSession()
}
