// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/muesli/cancelreader"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultWidth is the fallback width when detection fails
	DefaultWidth = 80

	// DefaultHeight is the fallback height when detection fails
	DefaultHeight = 24

	// MinWidth is the narrowest width reported to layout code
	MinWidth = 40
)

// ErrNotTerminal is returned when raw mode is requested on a non-terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// =============================================================================
// TERMINAL
// =============================================================================

// Terminal wraps an input and output stream.
type Terminal struct {
	in    io.Reader
	out   io.Writer
	inFd  int
	outFd int

	mu     sync.Mutex
	state  *term.State
	width  int
	height int

	writeMu sync.Mutex

	resizeMu sync.Mutex
	onResize []func(width, height int)
}

// New creates a terminal over in and out. Streams that are not files work,
// but never report as terminals.
func New(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: in, out: out, inFd: fdOf(in), outFd: fdOf(out)}
	t.width, t.height = t.querySize()
	return t
}

// Stdio returns a terminal over os.Stdin and os.Stdout.
func Stdio() *Terminal {
	return New(os.Stdin, os.Stdout)
}

func fdOf(v any) int {
	if f, ok := v.(interface{ Fd() uintptr }); ok {
		return int(f.Fd())
	}
	return -1
}

// IsTerminal reports whether the input is a terminal.
func (t *Terminal) IsTerminal() bool {
	return t.inFd >= 0 && term.IsTerminal(t.inFd)
}

// IsOutputTerminal reports whether the output is a terminal.
func (t *Terminal) IsOutputTerminal() bool {
	return t.outFd >= 0 && term.IsTerminal(t.outFd)
}

// MakeRaw puts the input into raw mode. Calling it twice is a no-op.
func (t *Terminal) MakeRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != nil {
		return nil
	}
	if !t.IsTerminal() {
		return ErrNotTerminal
	}
	state, err := term.MakeRaw(t.inFd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	t.state = state
	return nil
}

// Restore leaves raw mode.
func (t *Terminal) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil {
		return nil
	}
	err := term.Restore(t.inFd, t.state)
	t.state = nil
	if err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return nil
}

// Raw reports whether the terminal is in raw mode.
func (t *Terminal) Raw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// Write writes s. In raw mode bare newlines become "\r\n".
func (t *Terminal) Write(s string) {
	if t.Raw() {
		s = toCRLF(s)
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, _ = io.WriteString(t.out, s)
}

// WriteLine writes s followed by a newline.
func (t *Terminal) WriteLine(s string) {
	t.Write(s + "\n")
}

func toCRLF(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// =============================================================================
// SIZE
// =============================================================================

// Size returns the last known width and height.
func (t *Terminal) Size() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// Width returns the last known width, never less than MinWidth.
func (t *Terminal) Width() int {
	w, _ := t.Size()
	if w < MinWidth {
		return MinWidth
	}
	return w
}

// OnResize registers fn to be called with the new size after a resize.
func (t *Terminal) OnResize(fn func(width, height int)) {
	t.resizeMu.Lock()
	defer t.resizeMu.Unlock()
	t.onResize = append(t.onResize, fn)
}

// WatchResize refreshes the size whenever the terminal is resized, until
// ctx is done.
func (t *Terminal) WatchResize(ctx context.Context) {
	watchResize(ctx, t.Refresh)
}

// Refresh re-reads the size and notifies listeners when it changed.
func (t *Terminal) Refresh() {
	w, h := t.querySize()

	t.mu.Lock()
	changed := w != t.width || h != t.height
	t.width, t.height = w, h
	t.mu.Unlock()

	if !changed {
		return
	}
	t.resizeMu.Lock()
	listeners := append([]func(int, int){}, t.onResize...)
	t.resizeMu.Unlock()
	for _, fn := range listeners {
		fn(w, h)
	}
}

func (t *Terminal) querySize() (int, int) {
	if t.outFd < 0 {
		return DefaultWidth, DefaultHeight
	}
	w, h, err := term.GetSize(t.outFd)
	if err != nil || w <= 0 || h <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return w, h
}

// =============================================================================
// INPUT
// =============================================================================

// ReadLoop reads input and hands it to fn until ctx is done or the input
// ends. Multi-byte runes split across reads are held back until complete.
func (t *Terminal) ReadLoop(ctx context.Context, fn func(data string)) error {
	r := t.in
	if cr, err := cancelreader.NewReader(t.in); err == nil {
		defer cr.Close()
		stop := context.AfterFunc(ctx, func() { cr.Cancel() })
		defer stop()
		r = cr
	}

	buf := make([]byte, 1024)
	var pending []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			cut := completePrefix(pending)
			if cut > 0 {
				fn(string(pending[:cut]))
				pending = append(pending[:0], pending[cut:]...)
			}
		}
		if err != nil {
			if errors.Is(err, cancelreader.ErrCanceled) {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
	}
}

// completePrefix returns the length of b without a trailing partial rune.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}

// =============================================================================
// COLOR DETECTION
// =============================================================================

// ColorsEnabled reports whether colored output should be written to out.
// NO_COLOR wins over FORCE_COLOR, which wins over TTY detection.
// See https://no-color.org/.
func ColorsEnabled(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	fd := fdOf(out)
	return fd >= 0 && term.IsTerminal(fd)
}

// ColorProfile returns the color profile for out. The mode is one of
// "auto", "always" or "never".
func ColorProfile(out io.Writer, mode string) termenv.Profile {
	switch mode {
	case "never":
		return termenv.Ascii
	case "always":
	default:
		if !ColorsEnabled(out) {
			return termenv.Ascii
		}
	}
	profile := termenv.NewOutput(out).ColorProfile()
	if profile == termenv.Ascii {
		// Forced color on a non-terminal
		profile = termenv.ANSI256
	}
	return profile
}
