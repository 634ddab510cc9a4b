// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline executes a command line.
//
// The line is split into segments joined by operators. Each segment is
// resolved, bound, validated and run in order:
//
//   - a && b runs b only if a succeeded
//   - a || b runs b only if a failed
//   - a | b passes the output of a to b as input
//   - a >> file appends the output of a to file
//
// A skipped segment leaves the last exit code unchanged. Handler errors are
// reported per segment and never stop the shell.
package pipeline
