// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"

	"github.com/jeranaias/kindred-tui/internal/model"
)

// =============================================================================
// CHAT HISTORY
// =============================================================================

// RoomHistory fetches the full message history for a room, ordered by the
// server. Callers replace any local log wholesale with the result.
func (c *Client) RoomHistory(ctx context.Context, roomKey string) ([]model.Message, error) {
	var messages []model.Message
	if err := c.get(ctx, "/chat/messages/"+roomKey, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
