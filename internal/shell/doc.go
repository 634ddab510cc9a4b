// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell wires the termshell session together.
//
// A Shell owns the configuration, logger, store, terminal writer, processor
// registry, completion engine and pipeline executor. It runs one of two
// frontends:
//
//   - raw (default): the terminal is put in raw mode and keystrokes feed an
//     input mode stack. Submitted lines run on their own goroutine so that
//     Ctrl+C and interactive prompts keep working while a command runs.
//   - liner: github.com/peterh/liner edits lines; commands run in the
//     foreground and Ctrl+C arrives as SIGINT.
//
// RunLine executes a single line without a frontend, for -c.
//
// # Usage
//
//	sh, err := shell.New(ctx, shell.Options{})
//	if err != nil {
//	    return err
//	}
//	defer sh.Close()
//	code, err := sh.Run(ctx)
package shell
