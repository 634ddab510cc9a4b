// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/termshell/internal/commands"
)

// CaptureWriter records the data a command writes so it can be piped.
//
// Text, markdown, JSON and object writes are recorded; diagnostics and
// progress are not. Every call is forwarded to the inner writer unchanged.
type CaptureWriter struct {
	inner commands.Writer

	mu         sync.Mutex
	text       strings.Builder
	json       any
	hasJSON    bool
	objects    []map[string]any
	hasObjects bool
}

var _ commands.Writer = (*CaptureWriter)(nil)

// NewCaptureWriter wraps inner.
func NewCaptureWriter(inner commands.Writer) *CaptureWriter {
	return &CaptureWriter{inner: inner}
}

func (c *CaptureWriter) Write(s string) {
	c.mu.Lock()
	c.text.WriteString(s)
	c.mu.Unlock()
	c.inner.Write(s)
}

func (c *CaptureWriter) WriteLine(s string) {
	c.mu.Lock()
	c.text.WriteString(s)
	c.text.WriteByte('\n')
	c.mu.Unlock()
	c.inner.WriteLine(s)
}

func (c *CaptureWriter) WriteMarkdown(md string) {
	c.mu.Lock()
	c.text.WriteString(md)
	c.text.WriteByte('\n')
	c.mu.Unlock()
	c.inner.WriteMarkdown(md)
}

func (c *CaptureWriter) WriteJSON(v any) {
	c.mu.Lock()
	c.json, c.hasJSON = v, true
	c.mu.Unlock()
	c.inner.WriteJSON(v)
}

func (c *CaptureWriter) WriteObjects(rows []map[string]any, columns ...string) {
	c.mu.Lock()
	c.objects, c.hasObjects = rows, true
	c.mu.Unlock()
	c.inner.WriteObjects(rows, columns...)
}

func (c *CaptureWriter) WriteError(msg string) { c.inner.WriteError(msg) }
func (c *CaptureWriter) WriteWarning(msg string) { c.inner.WriteWarning(msg) }
func (c *CaptureWriter) WriteInfo(msg string) { c.inner.WriteInfo(msg) }
func (c *CaptureWriter) WriteSuccess(msg string) { c.inner.WriteSuccess(msg) }
func (c *CaptureWriter) Clear() { c.inner.Clear() }

func (c *CaptureWriter) WriteProgress(label string, fraction float64) {
	c.inner.WriteProgress(label, fraction)
}

// Output returns the captured value: the last JSON value, else the last
// object rows, else the text with ANSI sequences stripped, line endings
// normalized and trailing whitespace trimmed from each line.
func (c *CaptureWriter) Output() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasJSON {
		return c.json, true
	}
	if c.hasObjects {
		return c.objects, true
	}

	text := cleanText(c.text.String())
	if text == "" {
		return nil, false
	}
	return text, true
}

func cleanText(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
