// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// IDENTITY TYPE
// =============================================================================

// Identity is the authenticated user's profile as verified by the server.
// It is owned exclusively by the session manager: created on a successful
// session check, cleared on logout or verification failure, and never
// mutated by the chat subsystem.
type Identity struct {
	// ID is the server-assigned user id. Everything downstream - the
	// realtime connection tag, echo filtering, room key derivation -
	// hangs off this value.
	ID string `json:"id"`

	// Email is the account email address.
	Email string `json:"email"`

	// Name is the display name shown to counterparts.
	Name string `json:"name"`

	// IsEmailVerified reports whether the account email was confirmed.
	IsEmailVerified bool `json:"isEmailVerified"`

	// ShortBio is the free-text profile blurb.
	ShortBio string `json:"shortBio"`

	// Age as computed by the server from the stored birthday.
	Age int `json:"age"`

	// Gender is one of "male", "female", "other".
	Gender string `json:"gender"`

	// Avatar is the profile picture reference.
	Avatar Avatar `json:"avatar"`

	// Interests are the profile interest tags.
	Interests []Interest `json:"interests"`

	// LastLogin is the previous successful login time.
	LastLogin time.Time `json:"lastLogin"`
}

// Avatar is a hosted profile image reference.
type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Interest is a single profile interest tag.
type Interest struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// =============================================================================
// CANDIDATE TYPE
// =============================================================================

// Candidate is the trimmed-down profile the matching endpoint returns.
// The ranking and the compatibility score are computed server-side; the
// client only displays them.
type Candidate struct {
	ID              string   `json:"_id"`
	Name            string   `json:"name"`
	ShortBio        string   `json:"shortBio"`
	AvatarURL       string   `json:"avatarUrl"`
	Gender          string   `json:"gender"`
	Interests       []string `json:"interests"`
	PopularityScore float64  `json:"popularityScore"`
	Score           float64  `json:"score"`
	Age             int      `json:"age"`
}
