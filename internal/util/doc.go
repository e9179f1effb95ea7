// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the kindred client.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: display-width aware truncation (CJK safe)
//   - PadRight: space padding to a display width
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long strings safely for display
//	preview := util.TruncateWidth(lastMessage, 40)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0600)
package util
