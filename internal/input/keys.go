// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import "unicode/utf8"

// KeyCode identifies a decoded key.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyTab
	KeyEscape
	KeyCtrlC
	KeyCtrlD
	KeyCtrlA
	KeyCtrlE
	KeyCtrlL
	KeyCtrlU
	KeyCtrlW
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
)

// Key is one decoded keystroke. Rune is set for KeyRune.
type Key struct {
	Code KeyCode
	Rune rune
}

var controlKeys = map[byte]KeyCode{
	'\r':   KeyEnter,
	'\n':   KeyEnter,
	'\t':   KeyTab,
	0x7f:   KeyBackspace,
	0x08:   KeyBackspace,
	0x03:   KeyCtrlC,
	0x04:   KeyCtrlD,
	0x01:   KeyCtrlA,
	0x05:   KeyCtrlE,
	0x0c:   KeyCtrlL,
	0x15:   KeyCtrlU,
	0x17:   KeyCtrlW,
	'\x1b': KeyEscape,
}

var escapeSequences = map[string]KeyCode{
	"\x1b[A":  KeyUp,
	"\x1b[B":  KeyDown,
	"\x1b[C":  KeyRight,
	"\x1b[D":  KeyLeft,
	"\x1bOA":  KeyUp,
	"\x1bOB":  KeyDown,
	"\x1bOC":  KeyRight,
	"\x1bOD":  KeyLeft,
	"\x1b[H":  KeyHome,
	"\x1b[F":  KeyEnd,
	"\x1bOH":  KeyHome,
	"\x1bOF":  KeyEnd,
	"\x1b[1~": KeyHome,
	"\x1b[4~": KeyEnd,
	"\x1b[3~": KeyDelete,
}

// DecodeKeys splits a chunk of terminal input into keys. Unknown escape
// sequences and other control bytes are dropped.
func DecodeKeys(data string) []Key {
	var keys []Key
	for i := 0; i < len(data); {
		c := data[i]

		if c == 0x1b && i+1 < len(data) && (data[i+1] == '[' || data[i+1] == 'O') {
			n := escapeLength(data[i:])
			if code, ok := escapeSequences[data[i:i+n]]; ok {
				keys = append(keys, Key{Code: code})
			}
			i += n
			continue
		}

		if code, ok := controlKeys[c]; ok {
			// \r\n from a paste is one Enter.
			if c == '\r' && i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			keys = append(keys, Key{Code: code})
			i++
			continue
		}

		if c < 0x20 {
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(data[i:])
		if r != utf8.RuneError || size > 1 {
			keys = append(keys, Key{Code: KeyRune, Rune: r})
		}
		i += size
	}
	return keys
}

// escapeLength returns the length of the CSI or SS3 sequence at the start of s.
func escapeLength(s string) int {
	if s[1] == 'O' {
		if len(s) >= 3 {
			return 3
		}
		return len(s)
	}
	// CSI: parameters and intermediates, then a final byte in 0x40..0x7e.
	for i := 2; i < len(s); i++ {
		if s[i] >= 0x40 && s[i] <= 0x7e {
			return i + 1
		}
	}
	return len(s)
}
