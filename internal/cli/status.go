// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/kindred-tui/internal/api"
	"github.com/jeranaias/kindred-tui/internal/config"
)

// HandleStatus prints the session and endpoint status.
func HandleStatus(args []string) error {
	cfg := config.Global()

	fmt.Printf("kindred %s\n\n", Version)
	fmt.Printf("  API       %s\n", cfg.API.BaseURL)
	fmt.Printf("  Realtime  %s\n", cfg.RealtimeEndpoint())

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	me, err := client.Me(ctx)
	switch {
	case err == nil:
		fmt.Printf("  Session   signed in as %s <%s>\n", me.Name, me.Email)
		printMatchSummary(ctx, client)
	case errors.Is(err, api.ErrUnauthenticated):
		fmt.Println("  Session   signed out (run `kindred login`)")
	default:
		fmt.Printf("  Session   unreachable (%s)\n", api.UserMessage(err, "server not responding"))
	}
	return nil
}

// printMatchSummary adds match counts to the status output. Failures are
// non-fatal; the session line above is the authoritative part.
func printMatchSummary(ctx context.Context, client *api.Client) {
	if candidates, err := client.Candidates(ctx); err == nil {
		fmt.Printf("  Matching  %d candidate(s) waiting\n", len(candidates))
	}
	if liked, err := client.LikedCandidates(ctx); err == nil {
		fmt.Printf("  Liked     %d profile(s)\n", len(liked))
	}
}

// HandleVersion prints version information.
func HandleVersion(args []string) {
	fmt.Printf("kindred %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp(args []string) {
	fmt.Print(`kindred - terminal client for the kindred dating service

Usage:
  kindred              Launch the chat interface
  kindred login        Sign in (cookie persists across runs)
  kindred register     Create an account
  kindred logout       Sign out
  kindred status       Show session and endpoint status
  kindred config       Show or reset configuration
  kindred archive      Browse locally archived transcripts
  kindred version      Print version

Environment:
  KINDRED_API_URL       Override the API base URL
  KINDRED_REALTIME_URL  Override the realtime endpoint
  KINDRED_THEME         auto, dark, or light
`)
}
