// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package builtins provides the processors every termshell session starts with.
//
// # Categories
//
//   - core: help, history, clear, exit
//   - text: echo, upper, lower, count, grep, format, diff
//   - data: store, config
//   - ui: theme
//   - security: hash, totp
//   - system: sh, cp, sleep
//   - interactive: ask
//
// Processors reach session state through commands.Services: the store
// (*storage.Store), the theme host, the command history, the live settings
// and the session itself. A missing service makes the processor fail with a
// diagnostic instead of panicking.
//
// # Usage
//
//	reg := commands.NewRegistry()
//	if err := builtins.Register(reg); err != nil {
//	    return err
//	}
package builtins
