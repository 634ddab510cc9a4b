// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import "strings"

// Word is a whitespace-delimited token with its quotes removed.
type Word struct {
	// Text is the token with quotes stripped and escapes resolved.
	Text string
	// Quoted is true if any part of the token was quoted.
	Quoted bool
	// Start and End are byte offsets of the raw token in the input.
	Start, End int
}

// Tokenize splits input into words, respecting single and double quotes.
func Tokenize(input string) []string {
	words := ScanWords(input)
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Text
	}
	return out
}

// ScanWords splits input into words, keeping quote and position information.
// Backslash escapes a quote or backslash inside quotes. Unbalanced quotes run
// to the end of the input.
func ScanWords(input string) []Word {
	var words []Word
	var current strings.Builder
	var inSingle, inDouble, inWord, quoted bool
	start := 0

	emit := func(end int) {
		if inWord {
			words = append(words, Word{Text: current.String(), Quoted: quoted, Start: start, End: end})
		}
		current.Reset()
		inWord, quoted = false, false
	}

	for i := 0; i < len(input); i++ {
		c := input[i]

		if !inWord && !isSpace(c) {
			inWord = true
			start = i
		}

		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			quoted = true

		case c == '"' && !inSingle:
			inDouble = !inDouble
			quoted = true

		case c == '\\' && i+1 < len(input) && (inDouble || inSingle):
			next := input[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteByte(next)
				i++
			} else {
				current.WriteByte(c)
			}

		case isSpace(c) && !inSingle && !inDouble:
			emit(i)

		default:
			current.WriteByte(c)
		}
	}
	emit(len(input))

	return words
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
