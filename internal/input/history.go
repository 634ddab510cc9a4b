// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"strings"
	"sync"
)

// DefaultHistorySize is used when a non-positive size is given.
const DefaultHistorySize = 500

// History is a bounded list of submitted lines with up/down navigation.
type History struct {
	mu      sync.Mutex
	entries []string
	max     int
	pos     int
	draft   string
	persist func([]string)
}

// NewHistory creates a history seeded with entries. persist, if set, is called
// with a copy of the entries after every change.
func NewHistory(max int, entries []string, persist func([]string)) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	if len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	h := &History{
		entries: append([]string(nil), entries...),
		max:     max,
		persist: persist,
	}
	h.pos = len(h.entries)
	return h
}

// Add appends line. Blank lines and repeats of the last entry are skipped.
func (h *History) Add(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pos = len(h.entries)
	h.draft = ""
	if strings.TrimSpace(line) == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}

	h.entries = append(h.entries, line)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	h.pos = len(h.entries)
	h.save()
}

// Prev moves back one entry. current is remembered so that moving forward
// past the newest entry restores it.
func (h *History) Prev(current string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pos == len(h.entries) {
		h.draft = current
	}
	if h.pos == 0 {
		return "", false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Next moves forward one entry.
func (h *History) Next() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.pos], true
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// Clear removes every entry.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	h.pos = 0
	h.draft = ""
	h.save()
}

func (h *History) save() {
	if h.persist != nil {
		h.persist(append([]string(nil), h.entries...))
	}
}
