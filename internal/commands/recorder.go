// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"sync"
)

// EntryKind identifies which Writer method produced a recorded entry.
type EntryKind string

const (
	EntryText     EntryKind = "text"
	EntryLine     EntryKind = "line"
	EntryMarkdown EntryKind = "markdown"
	EntryJSON     EntryKind = "json"
	EntryObjects  EntryKind = "objects"
	EntryError    EntryKind = "error"
	EntryWarning  EntryKind = "warning"
	EntryInfo     EntryKind = "info"
	EntrySuccess  EntryKind = "success"
	EntryProgress EntryKind = "progress"
	EntryClear    EntryKind = "clear"
)

// Entry is one recorded write.
type Entry struct {
	Kind  EntryKind
	Text  string
	Value any
}

// Recorder is a Writer that keeps every write in memory. It backs the
// non-interactive frontends and tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Writer = (*Recorder)(nil)

func (r *Recorder) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *Recorder) Write(s string) { r.add(Entry{Kind: EntryText, Text: s}) }
func (r *Recorder) WriteLine(s string) { r.add(Entry{Kind: EntryLine, Text: s}) }
func (r *Recorder) WriteMarkdown(md string) { r.add(Entry{Kind: EntryMarkdown, Text: md}) }
func (r *Recorder) WriteJSON(v any) { r.add(Entry{Kind: EntryJSON, Value: v}) }
func (r *Recorder) WriteError(msg string) { r.add(Entry{Kind: EntryError, Text: msg}) }
func (r *Recorder) WriteWarning(msg string) { r.add(Entry{Kind: EntryWarning, Text: msg}) }
func (r *Recorder) WriteInfo(msg string) { r.add(Entry{Kind: EntryInfo, Text: msg}) }
func (r *Recorder) WriteSuccess(msg string) { r.add(Entry{Kind: EntrySuccess, Text: msg}) }
func (r *Recorder) Clear() { r.add(Entry{Kind: EntryClear}) }

func (r *Recorder) WriteObjects(rows []map[string]any, columns ...string) {
	r.add(Entry{Kind: EntryObjects, Value: rows, Text: strings.Join(columns, ",")})
}

func (r *Recorder) WriteProgress(label string, fraction float64) {
	r.add(Entry{Kind: EntryProgress, Text: label, Value: fraction})
}

// Entries returns a copy of everything recorded.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Of returns the text of entries with the given kind.
func (r *Recorder) Of(kind EntryKind) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Kind == kind {
			out = append(out, e.Text)
		}
	}
	return out
}

// Lines returns the Write and WriteLine output split into lines.
func (r *Recorder) Lines() []string {
	var b strings.Builder
	for _, e := range r.Entries() {
		switch e.Kind {
		case EntryText:
			b.WriteString(e.Text)
		case EntryLine:
			b.WriteString(e.Text)
			b.WriteByte('\n')
		}
	}
	s := strings.TrimRight(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Reset discards everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
