// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jeranaias/kindred-tui/internal/model"
)

// =============================================================================
// MATCHING AND SWIPES
// =============================================================================

// Candidates returns the server-ranked candidate list. Ranking and
// compatibility scores are entirely server-side; the client only displays
// them.
func (c *Client) Candidates(ctx context.Context) ([]model.Candidate, error) {
	return c.candidateList(ctx, "/matching")
}

// LikedCandidates returns candidates the current user has already liked.
func (c *Client) LikedCandidates(ctx context.Context) ([]model.Candidate, error) {
	return c.candidateList(ctx, "/swipes/candidates")
}

func (c *Client) candidateList(ctx context.Context, path string) ([]model.Candidate, error) {
	var env envelope
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}

	var candidates []model.Candidate
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &candidates); err != nil {
			return nil, fmt.Errorf("failed to parse candidates: %w", err)
		}
	}
	return candidates, nil
}

// SwipeRight records a like for the candidate.
func (c *Client) SwipeRight(ctx context.Context, candidateID string) error {
	return c.post(ctx, "/swipes/right", swipeBody(candidateID), nil)
}

// SwipeLeft records a pass on the candidate.
func (c *Client) SwipeLeft(ctx context.Context, candidateID string) error {
	return c.post(ctx, "/swipes/left", swipeBody(candidateID), nil)
}

// Unmatch dissolves an existing match. On success the caller is expected
// to retract the counterpart's room from the local directory.
func (c *Client) Unmatch(ctx context.Context, candidateID string) error {
	return c.post(ctx, "/swipes/unmatch", swipeBody(candidateID), nil)
}

func swipeBody(candidateID string) map[string]string {
	return map[string]string{"candidateId": candidateID}
}
