// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"strings"

	"github.com/jeranaias/termshell/internal/parser"
)

// Context describes the token being completed.
type Context struct {
	// Input is the full line
	Input string

	// Cursor is the byte offset of the cursor in Input
	Cursor int

	// Token is the partial word before the cursor, quotes removed
	Token string

	// TokenStart and TokenEnd bound the raw token in Input. TokenEnd extends
	// past the cursor to the end of the word.
	TokenStart int
	TokenEnd   int

	// TokenIndex is the position of Token within the current segment
	TokenIndex int

	// Tokens are the complete words of the current segment before Token
	Tokens []string
}

// BuildContext locates the token under the cursor. Only the segment after
// the last chaining operator is considered.
func BuildContext(input string, cursor int) Context {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(input) {
		cursor = len(input)
	}

	before := input[:cursor]
	segStart := parser.LastSegmentStart(before)
	words := parser.ScanWords(before[segStart:])

	ctx := Context{
		Input:      input,
		Cursor:     cursor,
		TokenStart: cursor,
	}

	if n := len(words); n > 0 && segStart+words[n-1].End == cursor {
		cur := words[n-1]
		ctx.Token = cur.Text
		ctx.TokenStart = segStart + cur.Start
		words = words[:n-1]
	}

	ctx.TokenEnd = cursor
	if rest := input[cursor:]; rest != "" && ctx.Token != "" {
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			ctx.TokenEnd = cursor + i
		} else {
			ctx.TokenEnd = len(input)
		}
	}

	for _, w := range words {
		ctx.Tokens = append(ctx.Tokens, w.Text)
	}
	ctx.TokenIndex = len(ctx.Tokens)

	return ctx
}

// Words returns the tokens before Token that are not flags.
func (c Context) Words() []string {
	var words []string
	for _, t := range c.Tokens {
		if strings.HasPrefix(t, "-") && len(t) > 1 {
			continue
		}
		words = append(words, t)
	}
	return words
}

// IsFlag reports whether the token being completed is a flag.
func (c Context) IsFlag() bool {
	return strings.HasPrefix(c.Token, "-")
}
