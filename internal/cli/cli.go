// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"strings"
)

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command identifies the requested top-level command.
type Command int

// Top-level commands.
const (
	// CmdTUI launches the chat interface (the default).
	CmdTUI Command = iota
	// CmdLogin signs in and persists the session cookie.
	CmdLogin
	// CmdRegister creates an account.
	CmdRegister
	// CmdLogout signs out locally and server-side.
	CmdLogout
	// CmdStatus prints session and configuration status.
	CmdStatus
	// CmdConfig inspects or resets the configuration file.
	CmdConfig
	// CmdArchive browses locally archived transcripts.
	CmdArchive
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// Parse reads os.Args and returns the requested command plus its
// remaining arguments.
func Parse() (Command, []string) {
	return parse(os.Args[1:])
}

func parse(args []string) (Command, []string) {
	if len(args) == 0 {
		return CmdTUI, nil
	}

	cmd := strings.ToLower(args[0])
	rest := args[1:]

	switch cmd {
	case "tui":
		return CmdTUI, rest
	case "login":
		return CmdLogin, rest
	case "register", "signup":
		return CmdRegister, rest
	case "logout":
		return CmdLogout, rest
	case "status", "s":
		return CmdStatus, rest
	case "config":
		return CmdConfig, rest
	case "archive":
		return CmdArchive, rest
	case "version", "-v", "--version":
		return CmdVersion, rest
	case "help", "-h", "--help":
		return CmdHelp, rest
	default:
		return CmdHelp, args
	}
}
