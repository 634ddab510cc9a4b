// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package input routes raw terminal input through a stack of input modes.
//
// The base of the stack is a CommandLineMode that edits and submits command
// lines. While a command runs, Reader pushes a ReaderMode for each prompt
// (line, password, confirm, select) and pops it once the prompt resolves.
// Keystrokes always go to the top of the stack.
//
// # Control Keys
//
//   - Enter (\r): submit
//   - Backspace (\x7f): delete before cursor
//   - Escape (\x1b): cancel a prompt
//   - Ctrl+C (\x03): cancel a prompt, abort a command, or clear the line
//   - Arrows (\x1b[A..D): history, selection, cursor movement
package input
