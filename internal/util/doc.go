// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides helpers shared across termshell packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth, StringWidth: display-width aware string handling
//   - Lines: line splitting that tolerates CRLF
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - ExpandHome: "~/" expansion for configured paths
//
// # Usage
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0600)
package util
