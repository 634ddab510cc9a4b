// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jeranaias/termshell/internal/completion"
)

// CommandLineConfig wires a CommandLineMode to the rest of the shell.
type CommandLineConfig struct {
	Display Display
	Engine  *completion.Engine
	History *History

	// Prompt returns the prompt text, styles included
	Prompt func() string

	// OnSubmit receives a non-blank line. The mode stays busy until Ready.
	OnSubmit func(line string)

	// OnInterrupt is called for Ctrl+C while a command is running
	OnInterrupt func()

	// OnExit is called for Ctrl+D on an empty line
	OnExit func()

	// MaxCandidates caps the candidate listing; zero means no cap
	MaxCandidates int
}

// CommandLineMode edits and submits command lines. It is the base mode.
type CommandLineMode struct {
	cfg  CommandLineConfig
	mu   sync.Mutex
	buf  lineBuffer
	busy bool
}

// NewCommandLineMode creates the base mode.
func NewCommandLineMode(cfg CommandLineConfig) *CommandLineMode {
	if cfg.Prompt == nil {
		cfg.Prompt = func() string { return "> " }
	}
	if cfg.History == nil {
		cfg.History = NewHistory(0, nil, nil)
	}
	return &CommandLineMode{cfg: cfg}
}

// Activate redraws the prompt unless a command is running.
func (m *CommandLineMode) Activate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.busy {
		m.redraw()
	}
}

// Busy reports whether a submitted command is still running.
func (m *CommandLineMode) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// Ready marks the running command finished and shows a fresh prompt.
func (m *CommandLineMode) Ready() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = false
	m.redraw()
}

// SetMaxCandidates changes the candidate listing cap.
func (m *CommandLineMode) SetMaxCandidates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.MaxCandidates = n
}

// Line returns the current buffer.
func (m *CommandLineMode) Line() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}

// HandleKey implements Mode.
func (m *CommandLineMode) HandleKey(k Key) {
	m.mu.Lock()

	if m.busy {
		m.mu.Unlock()
		if k.Code == KeyCtrlC && m.cfg.OnInterrupt != nil {
			m.cfg.OnInterrupt()
		}
		return
	}

	if k.Code != KeyTab && m.cfg.Engine != nil {
		m.cfg.Engine.Reset()
	}

	switch k.Code {
	case KeyEnter:
		line := m.buf.String()
		m.buf.reset()
		m.write("\r\n")
		m.cfg.History.Add(line)
		if strings.TrimSpace(line) == "" || m.cfg.OnSubmit == nil {
			m.redraw()
			m.mu.Unlock()
			return
		}
		m.busy = true
		m.mu.Unlock()
		m.cfg.OnSubmit(line)
		return

	case KeyCtrlD:
		if m.buf.Len() == 0 && m.cfg.OnExit != nil {
			m.mu.Unlock()
			m.cfg.OnExit()
			return
		}
		m.buf.edit(Key{Code: KeyDelete})

	case KeyCtrlC:
		if m.buf.Len() > 0 {
			m.write("^C")
		}
		m.write("\r\n")
		m.buf.reset()

	case KeyCtrlL:
		m.write("\x1b[2J\x1b[H")

	case KeyTab:
		m.complete()

	case KeyUp:
		if line, ok := m.cfg.History.Prev(m.buf.String()); ok {
			m.buf.set(line)
		}

	case KeyDown:
		if line, ok := m.cfg.History.Next(); ok {
			m.buf.set(line)
		}

	case KeyEscape:

	default:
		m.buf.edit(k)
	}

	m.redraw()
	m.mu.Unlock()
}

// complete runs the completion engine. Called with m.mu held.
func (m *CommandLineMode) complete() {
	if m.cfg.Engine == nil {
		return
	}
	line := m.buf.String()
	res := m.cfg.Engine.Complete(line, m.buf.cursorByte())

	switch res.Action {
	case completion.ActionComplete:
		updated, cursor := res.Apply(line)
		m.buf.setAt(updated, cursor)

	case completion.ActionShowCandidates:
		cands := res.Candidates
		extra := 0
		if limit := m.cfg.MaxCandidates; limit > 0 && len(cands) > limit {
			extra = len(cands) - limit
			cands = cands[:limit]
		}
		var b strings.Builder
		b.WriteString("\r\n")
		for _, row := range FormatColumns(cands, m.width()) {
			b.WriteString(row)
			b.WriteString("\r\n")
		}
		if extra > 0 {
			fmt.Fprintf(&b, "... and %d more\r\n", extra)
		}
		m.write(b.String())
	}
}

func (m *CommandLineMode) redraw() {
	if m.cfg.Display == nil {
		return
	}
	drawLine(m.cfg.Display, m.cfg.Prompt(), m.buf.runes, m.buf.cursor)
}

func (m *CommandLineMode) write(s string) {
	if m.cfg.Display != nil {
		m.cfg.Display.Write(s)
	}
}

func (m *CommandLineMode) width() int {
	if m.cfg.Display == nil {
		return 80
	}
	if w := m.cfg.Display.Width(); w > 0 {
		return w
	}
	return 80
}
