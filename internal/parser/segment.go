// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"strconv"
	"strings"
)

// =============================================================================
// PARSED COMMAND
// =============================================================================

// Arg is a named argument in the order it appeared.
type Arg struct {
	Name  string
	Value any
}

// Token is one element of a parsed segment, either a flag or a bare word.
type Token struct {
	// Flag is true for --name and -alias tokens.
	Flag bool

	// Name is the flag name without dashes.
	Name string

	// Value is the coerced flag value, or true for a flag without a value.
	Value any

	// Text is the uncoerced value text for flags, or the word itself.
	Text string

	// HasValue is true if the flag carried an explicit value.
	HasValue bool

	// WordIndex is the index into ParsedCommand.Words for word tokens.
	WordIndex int
}

// ParsedCommand is the result of parsing one command segment.
type ParsedCommand struct {
	// Name is the bare words joined by single spaces.
	Name string

	// Words are the bare words in order.
	Words []string

	// Args are the flags in order, with coerced values.
	Args []Arg

	// Tokens preserves the original token order.
	Tokens []Token

	// Raw is the segment as given.
	Raw string
}

// Arg returns the last value given for name.
func (p ParsedCommand) Arg(name string) (any, bool) {
	for i := len(p.Args) - 1; i >= 0; i-- {
		if p.Args[i].Name == name {
			return p.Args[i].Value, true
		}
	}
	return nil, false
}

// =============================================================================
// SEGMENT PARSING
// =============================================================================

// ParseSegment parses a command segment.
//
// Recognized forms are --name=value, --name "quoted value", -alias, and bare
// words. A flag with no value is true. Numeric tokens such as -5 are words. A
// lone -- ends flag parsing.
func ParseSegment(segment string) ParsedCommand {
	result := ParsedCommand{Raw: segment}
	words := ScanWords(segment)
	flagsDone := false

	addWord := func(text string) {
		result.Tokens = append(result.Tokens, Token{Text: text, WordIndex: len(result.Words)})
		result.Words = append(result.Words, text)
	}

	for i := 0; i < len(words); i++ {
		w := words[i]

		if flagsDone || w.Quoted && !strings.HasPrefix(segment[w.Start:w.End], "-") || !isFlag(w.Text) {
			addWord(w.Text)
			continue
		}

		if w.Text == "--" {
			flagsDone = true
			continue
		}

		name := strings.TrimLeft(w.Text, "-")
		tok := Token{Flag: true, Name: name, Value: true}

		if eq := strings.IndexByte(name, '='); eq >= 0 {
			tok.Name = name[:eq]
			tok.Text = name[eq+1:]
			tok.HasValue = true
			if w.Quoted {
				tok.Value = tok.Text
			} else {
				tok.Value = Coerce(tok.Text)
			}
		} else if i+1 < len(words) && words[i+1].Quoted && !isFlag(words[i+1].Text) {
			tok.Text = words[i+1].Text
			tok.Value = tok.Text
			tok.HasValue = true
			i++
		}

		result.Tokens = append(result.Tokens, tok)
		result.Args = append(result.Args, Arg{Name: tok.Name, Value: tok.Value})
	}

	result.Name = strings.Join(result.Words, " ")
	return result
}

// isFlag reports whether s looks like --name or -alias.
func isFlag(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	if s == "--" {
		return true
	}
	rest := strings.TrimLeft(s, "-")
	if rest == "" {
		return false
	}
	// -5 and -.5 are numbers.
	if c := rest[0]; c >= '0' && c <= '9' || c == '.' {
		return false
	}
	return true
}

// =============================================================================
// COERCION
// =============================================================================

// Coerce converts a scalar string to int64, float64 or bool where it parses
// cleanly, and returns it unchanged otherwise.
func Coerce(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "":
		return s
	}

	if !looksNumeric(s) {
		return s
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// looksNumeric rejects strings ParseFloat accepts but users don't mean as
// numbers, such as "inf", "NaN" and "0x1p-2".
func looksNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c == '.', c == 'e', c == 'E':
		case (c == '-' || c == '+') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		default:
			return false
		}
	}
	return true
}
