// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the kindred command line: argument dispatch
// and the non-TUI subcommands (login, logout, status, config, archive).
package cli
