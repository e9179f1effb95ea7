// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/kindred-tui/internal/config"
	"github.com/jeranaias/kindred-tui/internal/storage"
)

// HandleArchive browses locally archived transcripts.
//
//	kindred archive            list archived conversations
//	kindred archive <roomKey>  print one archived transcript
func HandleArchive(args []string) error {
	cfg := config.Global()
	path, err := cfg.ArchivePath()
	if err != nil {
		return err
	}

	archive, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer archive.Close()

	ctx := context.Background()

	if len(args) == 0 {
		rooms, err := archive.Rooms(ctx)
		if err != nil {
			return err
		}
		if len(rooms) == 0 {
			fmt.Println("No archived conversations.")
			return nil
		}
		for _, room := range rooms {
			fmt.Printf("%-24s %-20s %4d messages  archived %s\n",
				room.Key, room.CounterpartName, room.MessageCount,
				room.ArchivedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	}

	roomKey := args[0]
	messages, err := archive.Messages(ctx, roomKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotArchived) {
			return fmt.Errorf("no archived transcript for %q", roomKey)
		}
		return err
	}

	for _, msg := range messages {
		fmt.Printf("[%s] %s: %s\n",
			msg.CreatedAt.Local().Format("2006-01-02 15:04"), msg.From, msg.Body)
	}
	return nil
}
