// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package parser turns a raw shell line into command parts and parsed segments.
//
// A line is first split on the chaining operators (&&, ||, >>, |) outside of
// quotes. Each command part is then parsed into flags and bare words.
//
// # Usage
//
//	for _, part := range parser.SplitByOperators(`echo "a | b" | upper`) {
//	    if part.Kind == parser.PartCommand {
//	        seg := parser.ParseSegment(part.Text)
//	        fmt.Println(seg.Name, seg.Args)
//	    }
//	}
package parser
