// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package terminal is the shell's boundary with the real terminal.
//
// It provides:
//   - Terminal: raw mode, size, resize notifications and a cancelable read loop
//   - color detection honoring NO_COLOR and FORCE_COLOR
//   - Theme: named color palettes with per-key overrides
//   - Writer: the commands.Writer that renders tables, JSON, markdown,
//     diagnostics and progress bars
//
// Terminal writes translate "\n" to "\r\n" while in raw mode, so everything
// above this package writes plain newlines.
package terminal
