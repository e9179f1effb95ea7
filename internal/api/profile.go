// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// GeocodeResult is one address candidate from the geocoding endpoint.
type GeocodeResult struct {
	Lon         string `json:"lon"`
	Lat         string `json:"lat"`
	DisplayName string `json:"display_name"`
}

// =============================================================================
// PROFILE SUPPORT
// =============================================================================

// Interests fetches the available profile interest tags.
func (c *Client) Interests(ctx context.Context) ([]InterestOption, error) {
	var env envelope
	if err := c.get(ctx, "/interests", &env); err != nil {
		return nil, err
	}

	var interests []InterestOption
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &interests); err != nil {
			return nil, fmt.Errorf("failed to parse interests: %w", err)
		}
	}
	return interests, nil
}

// InterestOption is one selectable interest tag.
type InterestOption struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Geocode resolves a street address to coordinates via the backend's
// geocoding proxy.
func (c *Client) Geocode(ctx context.Context, street, city string) ([]GeocodeResult, error) {
	query := url.Values{}
	query.Set("street", street)
	query.Set("city", city)

	var env envelope
	if err := c.get(ctx, "/geocode?"+query.Encode(), &env); err != nil {
		return nil, err
	}

	var results []GeocodeResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &results); err != nil {
			return nil, fmt.Errorf("failed to parse geocode results: %w", err)
		}
	}
	return results, nil
}
