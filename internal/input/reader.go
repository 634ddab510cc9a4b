// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/jeranaias/termshell/internal/commands"
)

// =============================================================================
// REQUESTS
// =============================================================================

// RequestType selects how a ReaderMode collects input.
type RequestType int

const (
	RequestLine RequestType = iota
	RequestPassword
	RequestConfirm
	RequestSelect
)

// Request is one pending prompt.
type Request struct {
	ID       string
	Type     RequestType
	Prompt   string
	Default  bool
	Options  []string
	OnChange func(int)
}

type response struct {
	text  string
	yes   bool
	index int
	err   error
}

// =============================================================================
// READER
// =============================================================================

// Reader implements commands.Reader on top of a mode stack.
type Reader struct {
	stack    *Stack
	display  Display
	mask     rune
	selected lipgloss.Style

	mu     sync.Mutex
	active *ReaderMode
}

var _ commands.Reader = (*Reader)(nil)

// NewReader creates a reader that pushes prompt modes onto stack.
func NewReader(stack *Stack, display Display) *Reader {
	return &Reader{
		stack:    stack,
		display:  display,
		mask:     '*',
		selected: lipgloss.NewStyle().Bold(true),
	}
}

// SetMask sets the rune echoed for password input. Zero echoes nothing.
func (r *Reader) SetMask(mask rune) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mask = mask
}

// SetSelectedStyle sets the style of the highlighted select option.
func (r *Reader) SetSelectedStyle(s lipgloss.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = s
}

// Active reports whether a prompt is pending.
func (r *Reader) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Cancel resolves the pending prompt, if any, with ErrCanceled.
func (r *Reader) Cancel() {
	r.mu.Lock()
	m := r.active
	r.mu.Unlock()
	if m != nil {
		m.finish(response{err: commands.ErrCanceled})
	}
}

// ReadLine implements commands.Reader.
func (r *Reader) ReadLine(ctx context.Context, prompt string) (string, error) {
	resp, err := r.request(ctx, Request{Type: RequestLine, Prompt: prompt})
	return resp.text, err
}

// ReadPassword implements commands.Reader.
func (r *Reader) ReadPassword(ctx context.Context, prompt string) (string, error) {
	resp, err := r.request(ctx, Request{Type: RequestPassword, Prompt: prompt})
	return resp.text, err
}

// ReadConfirm implements commands.Reader.
func (r *Reader) ReadConfirm(ctx context.Context, prompt string, def bool) (bool, error) {
	resp, err := r.request(ctx, Request{Type: RequestConfirm, Prompt: prompt, Default: def})
	return resp.yes, err
}

// ReadSelect implements commands.Reader.
func (r *Reader) ReadSelect(ctx context.Context, prompt string, options []string, onChange func(int)) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("select %q: no options", prompt)
	}
	resp, err := r.request(ctx, Request{Type: RequestSelect, Prompt: prompt, Options: options, OnChange: onChange})
	if err != nil {
		return -1, err
	}
	return resp.index, nil
}

func (r *Reader) request(ctx context.Context, req Request) (response, error) {
	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		return response{}, commands.ErrRequestActive
	}
	if err := ctx.Err(); err != nil {
		r.mu.Unlock()
		return response{}, fmt.Errorf("%w: %w", commands.ErrCanceled, err)
	}
	req.ID = uuid.New().String()
	m := &ReaderMode{
		req:      req,
		reader:   r,
		mask:     r.mask,
		selected: r.selected,
		done:     make(chan response, 1),
	}
	r.active = m
	r.mu.Unlock()

	r.stack.Push(m)

	select {
	case resp := <-m.done:
		return resp, resp.err
	case <-ctx.Done():
		m.finish(response{err: fmt.Errorf("%w: %w", commands.ErrCanceled, ctx.Err())})
		resp := <-m.done
		return resp, resp.err
	}
}

func (r *Reader) release(m *ReaderMode) {
	r.mu.Lock()
	if r.active == m {
		r.active = nil
	}
	r.mu.Unlock()
	r.stack.Pop(m)
}

// =============================================================================
// READER MODE
// =============================================================================

// ReaderMode collects the answer to one Request.
type ReaderMode struct {
	req      Request
	reader   *Reader
	mask     rune
	selected lipgloss.Style

	mu     sync.Mutex
	buf    lineBuffer
	index  int
	drawn  bool
	once   sync.Once
	done   chan response
	closed bool
}

// Request returns the prompt being answered.
func (m *ReaderMode) Request() Request {
	return m.req
}

// Activate implements Mode.
func (m *ReaderMode) Activate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.render()
	}
}

// HandleKey implements Mode.
func (m *ReaderMode) HandleKey(k Key) {
	if k.Code == KeyEscape || k.Code == KeyCtrlC {
		m.finish(response{err: commands.ErrCanceled})
		return
	}

	m.mu.Lock()
	var (
		resp     response
		resolved bool
		changed  = -1
	)

	switch m.req.Type {
	case RequestLine, RequestPassword:
		if k.Code == KeyEnter {
			resp, resolved = response{text: m.buf.String()}, true
		} else if m.buf.edit(k) {
			m.render()
		}

	case RequestConfirm:
		// The buffer holds at most one of y or n.
		switch {
		case k.Code == KeyEnter:
			switch m.buf.String() {
			case "y":
				resp = response{yes: true, text: "y"}
			case "n":
				resp = response{yes: false, text: "n"}
			default:
				resp = response{yes: m.req.Default}
			}
			resolved = true
		case k.Code == KeyRune && (k.Rune == 'y' || k.Rune == 'Y' || k.Rune == 'n' || k.Rune == 'N'):
			m.buf.set(strings.ToLower(string(k.Rune)))
			m.render()
		case k.Code == KeyBackspace || k.Code == KeyCtrlU:
			m.buf.reset()
			m.render()
		}

	case RequestSelect:
		switch k.Code {
		case KeyUp:
			if m.index > 0 {
				m.index--
				changed = m.index
				m.render()
			}
		case KeyDown:
			if m.index < len(m.req.Options)-1 {
				m.index++
				changed = m.index
				m.render()
			}
		case KeyEnter:
			resp, resolved = response{index: m.index, text: m.req.Options[m.index]}, true
		}
	}
	m.mu.Unlock()

	if changed >= 0 && m.req.OnChange != nil {
		m.req.OnChange(changed)
	}
	if resolved {
		m.finish(resp)
	}
}

// finish resolves the request once, pops the mode and hands the response
// to the waiting caller.
func (m *ReaderMode) finish(resp response) {
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		if m.req.Type != RequestSelect {
			m.write("\r\n")
		}
		m.mu.Unlock()

		m.reader.release(m)
		m.done <- resp
	})
}

// render draws the prompt. Called with m.mu held.
func (m *ReaderMode) render() {
	switch m.req.Type {
	case RequestLine:
		drawLine(m.reader.display, m.req.Prompt, m.buf.runes, m.buf.cursor)

	case RequestPassword:
		masked := []rune(strings.Repeat(string(m.mask), m.buf.Len()))
		if m.mask == 0 {
			masked = nil
		}
		cursor := m.buf.cursor
		if cursor > len(masked) {
			cursor = len(masked)
		}
		drawLine(m.reader.display, m.req.Prompt, masked, cursor)

	case RequestConfirm:
		hint := " [y/N] "
		if m.req.Default {
			hint = " [Y/n] "
		}
		drawLine(m.reader.display, m.req.Prompt+hint, m.buf.runes, m.buf.cursor)

	case RequestSelect:
		var b strings.Builder
		if m.drawn {
			fmt.Fprintf(&b, "\x1b[%dA", len(m.req.Options))
		} else {
			b.WriteString("\r" + m.req.Prompt + "\r\n")
			m.drawn = true
		}
		for i, opt := range m.req.Options {
			b.WriteString("\r\x1b[K")
			if i == m.index {
				b.WriteString(m.selected.Render("> " + opt))
			} else {
				b.WriteString("  " + opt)
			}
			b.WriteString("\r\n")
		}
		m.write(b.String())
	}
}

func (m *ReaderMode) write(s string) {
	if m.reader.display != nil {
		m.reader.display.Write(s)
	}
}
