// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// lineBuffer is an editable line with a rune cursor.
type lineBuffer struct {
	runes  []rune
	cursor int
}

func (b *lineBuffer) String() string { return string(b.runes) }

func (b *lineBuffer) Len() int { return len(b.runes) }

// set replaces the content and moves the cursor to the end.
func (b *lineBuffer) set(s string) {
	b.runes = []rune(s)
	b.cursor = len(b.runes)
}

// setAt replaces the content and places the cursor at a byte offset.
func (b *lineBuffer) setAt(s string, byteCursor int) {
	if byteCursor > len(s) {
		byteCursor = len(s)
	}
	b.runes = []rune(s)
	b.cursor = len([]rune(s[:byteCursor]))
}

func (b *lineBuffer) reset() {
	b.runes = nil
	b.cursor = 0
}

// cursorByte returns the cursor as a byte offset into String().
func (b *lineBuffer) cursorByte() int {
	return len(string(b.runes[:b.cursor]))
}

// edit applies a line-editing key. It reports whether the key was an edit.
func (b *lineBuffer) edit(k Key) bool {
	switch k.Code {
	case KeyRune:
		b.runes = append(b.runes[:b.cursor], append([]rune{k.Rune}, b.runes[b.cursor:]...)...)
		b.cursor++
	case KeyBackspace:
		if b.cursor == 0 {
			return true
		}
		b.runes = append(b.runes[:b.cursor-1], b.runes[b.cursor:]...)
		b.cursor--
	case KeyDelete:
		if b.cursor < len(b.runes) {
			b.runes = append(b.runes[:b.cursor], b.runes[b.cursor+1:]...)
		}
	case KeyLeft:
		if b.cursor > 0 {
			b.cursor--
		}
	case KeyRight:
		if b.cursor < len(b.runes) {
			b.cursor++
		}
	case KeyHome, KeyCtrlA:
		b.cursor = 0
	case KeyEnd, KeyCtrlE:
		b.cursor = len(b.runes)
	case KeyCtrlU:
		b.runes = append([]rune(nil), b.runes[b.cursor:]...)
		b.cursor = 0
	case KeyCtrlW:
		start := b.cursor
		for start > 0 && unicode.IsSpace(b.runes[start-1]) {
			start--
		}
		for start > 0 && !unicode.IsSpace(b.runes[start-1]) {
			start--
		}
		b.runes = append(b.runes[:start], b.runes[b.cursor:]...)
		b.cursor = start
	default:
		return false
	}
	return true
}

// drawLine redraws the current terminal line as prompt+text and puts the
// terminal cursor under the rune at cursor.
func drawLine(d Display, prompt string, text []rune, cursor int) {
	if d == nil {
		return
	}
	var b strings.Builder
	b.WriteString("\r")
	b.WriteString(prompt)
	b.WriteString(string(text))
	b.WriteString("\x1b[K")
	if tail := runewidth.StringWidth(string(text[cursor:])); tail > 0 {
		fmt.Fprintf(&b, "\x1b[%dD", tail)
	}
	d.Write(b.String())
}

// FormatColumns lays items out in columns that fit width, filling down each
// column first.
func FormatColumns(items []string, width int) []string {
	if len(items) == 0 {
		return nil
	}
	colWidth := 0
	for _, item := range items {
		colWidth = max(colWidth, runewidth.StringWidth(item))
	}
	colWidth += 2

	cols := 1
	if width > colWidth {
		cols = width / colWidth
	}
	rows := (len(items) + cols - 1) / cols

	lines := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		var line strings.Builder
		for c := 0; c < cols; c++ {
			i := c*rows + r
			if i >= len(items) {
				break
			}
			if c < cols-1 && (c+1)*rows+r < len(items) {
				line.WriteString(runewidth.FillRight(items[i], colWidth))
			} else {
				line.WriteString(items[i])
			}
		}
		lines = append(lines, line.String())
	}
	return lines
}
