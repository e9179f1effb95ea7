// kindred - A terminal client for the Kindred matchmaking service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kindred-tui/internal/app"
	"github.com/jeranaias/kindred-tui/internal/cli"
	"github.com/jeranaias/kindred-tui/internal/config"
	"github.com/jeranaias/kindred-tui/internal/ui/chat"
	"github.com/jeranaias/kindred-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// Load configuration before anything else. A broken config file is
	// reported but does not block startup; defaults take over.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: using default configuration: %v\n", err)
		cfg = config.Default()
	}
	config.SetGlobal(cfg)

	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdRegister:
		exitOnError(cli.HandleRegister(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args))
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdArchive:
		exitOnError(cli.HandleArchive(args))
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp(args)
	default:
		runTUI()
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the chat interface.
func runTUI() {
	cfg := config.Global()

	// The terminal owns stdout while the TUI runs, so the standard
	// logger writes to a file under the config directory instead.
	if err := config.EnsureConfigDir(); err == nil {
		if logPath, err := config.LogPath(); err == nil {
			if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
				log.SetOutput(f)
				defer f.Close()
			}
		}
	}

	appCtx, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Reload configuration when the file changes on disk. Best effort:
	// the watcher is a convenience, not a requirement.
	watcher, err := config.NewWatcher(func() {
		if fresh, err := config.Load(); err == nil {
			config.SetGlobal(fresh)
		}
	})
	if err == nil {
		if err := watcher.Watch(); err != nil {
			log.Printf("config watcher: %v", err)
		}
		defer watcher.Close()
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	m := chat.New(appCtx, theme)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	m.Close()
	if err := appCtx.Teardown(context.Background()); err != nil {
		log.Printf("teardown: %v", err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running kindred: %v\n", runErr)
		os.Exit(1)
	}
}
