// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import "strings"

// =============================================================================
// COMMAND PARTS
// =============================================================================

// PartKind identifies what a CommandPart holds.
type PartKind int

const (
	PartCommand PartKind = iota // Command text
	PartAnd                     // &&
	PartOr                      // ||
	PartAppend                  // >>
	PartPipe                    // |
)

// String returns the operator text, or "command" for command parts.
func (k PartKind) String() string {
	switch k {
	case PartAnd:
		return "&&"
	case PartOr:
		return "||"
	case PartAppend:
		return ">>"
	case PartPipe:
		return "|"
	default:
		return "command"
	}
}

// CommandPart is one element of a split line.
type CommandPart struct {
	Kind PartKind
	// Text is the trimmed command text. Empty for operators.
	Text string
}

// operators in match order. Two-character operators must come before "|".
var operators = []struct {
	text string
	kind PartKind
}{
	{"&&", PartAnd},
	{"||", PartOr},
	{">>", PartAppend},
	{"|", PartPipe},
}

// =============================================================================
// SPLITTING
// =============================================================================

// SplitByOperators splits a line on &&, ||, >> and | outside of quotes.
// Command texts are trimmed and empty ones are dropped; operators are kept.
func SplitByOperators(line string) []CommandPart {
	var parts []CommandPart
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		if text != "" {
			parts = append(parts, CommandPart{Kind: PartCommand, Text: text})
		}
	}

	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]

		if quote != 0 {
			current.WriteByte(c)
			if quotedEscape(line, i) {
				i++
				current.WriteByte(line[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}

		if c == '"' || c == '\'' {
			quote = c
			current.WriteByte(c)
			continue
		}

		if kind, n, ok := operatorAt(line, i); ok {
			flush()
			parts = append(parts, CommandPart{Kind: kind})
			i += n - 1
			continue
		}

		current.WriteByte(c)
	}
	flush()

	return parts
}

// operatorAt reports the operator starting at line[i], if any.
func operatorAt(line string, i int) (PartKind, int, bool) {
	for _, op := range operators {
		if strings.HasPrefix(line[i:], op.text) {
			return op.kind, len(op.text), true
		}
	}
	return PartCommand, 0, false
}

// quotedEscape reports whether line[i] is a backslash escaping a quote or a
// backslash. Only meaningful inside quotes, matching ScanWords.
func quotedEscape(line string, i int) bool {
	if line[i] != '\\' || i+1 >= len(line) {
		return false
	}
	next := line[i+1]
	return next == '"' || next == '\'' || next == '\\'
}

// LastSegmentStart returns the byte offset where the last command segment of
// line begins, that is just after the final unquoted operator.
func LastSegmentStart(line string) int {
	start := 0
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if quotedEscape(line, i) {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if _, n, ok := operatorAt(line, i); ok {
			i += n - 1
			start = i + 1
		}
	}
	return start
}
