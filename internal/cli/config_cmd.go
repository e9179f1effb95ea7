// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/jeranaias/kindred-tui/internal/config"
)

// HandleConfig shows, locates, or resets the configuration.
func HandleConfig(args []string) error {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "", "show":
		cfg := config.Global()
		fmt.Printf("api.base_url            = %s\n", cfg.API.BaseURL)
		fmt.Printf("api.timeout_secs        = %d\n", cfg.API.TimeoutSecs)
		fmt.Printf("realtime.url            = %s\n", cfg.RealtimeEndpoint())
		fmt.Printf("chat.send_rate_per_sec  = %g\n", cfg.Chat.SendRatePerSec)
		fmt.Printf("chat.max_message_len    = %d\n", cfg.Chat.MaxMessageLen)
		fmt.Printf("archive.enabled         = %t\n", cfg.Archive.Enabled)
		fmt.Printf("ui.theme                = %s\n", cfg.UI.Theme)
		fmt.Printf("ui.sidebar_width        = %d\n", cfg.UI.SidebarWidth)
		return nil

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "reset":
		if err := config.Save(config.Default()); err != nil {
			return err
		}
		fmt.Println("Configuration reset to defaults.")
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q (want show, path, or reset)", sub)
	}
}
