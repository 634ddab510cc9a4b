// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/completion"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeDisplay struct {
	mu  sync.Mutex
	out strings.Builder
}

func (d *fakeDisplay) Write(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out.WriteString(s)
}

func (d *fakeDisplay) Width() int { return 40 }

func (d *fakeDisplay) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out.String()
}

func newTestShell(t *testing.T) (*Stack, *Reader, *CommandLineMode, *fakeDisplay) {
	t.Helper()
	display := &fakeDisplay{}
	reg := commands.NewRegistry()
	require.NoError(t, reg.Register(&commands.Processor{Command: "help"}))
	require.NoError(t, reg.Register(&commands.Processor{Command: "hash"}))
	require.NoError(t, reg.Register(&commands.Processor{Command: "history"}))

	base := NewCommandLineMode(CommandLineConfig{
		Display: display,
		Engine:  completion.NewEngine(completion.CommandProvider{Registry: reg}),
	})
	stack := NewStack(base, nil)
	return stack, NewReader(stack, display), base, display
}

// waitForPrompt blocks until a reader mode is on the stack.
func waitForPrompt(t *testing.T, s *Stack) {
	t.Helper()
	require.Eventually(t, func() bool { return s.Depth() == 2 }, time.Second, time.Millisecond)
}

// =============================================================================
// KEY DECODING TESTS
// =============================================================================

func TestDecodeKeys(t *testing.T) {
	tests := []struct {
		input string
		want  []Key
	}{
		{"a", []Key{{Code: KeyRune, Rune: 'a'}}},
		{"\r", []Key{{Code: KeyEnter}}},
		{"\r\n", []Key{{Code: KeyEnter}}},
		{"\x7f", []Key{{Code: KeyBackspace}}},
		{"\x1b", []Key{{Code: KeyEscape}}},
		{"\x03", []Key{{Code: KeyCtrlC}}},
		{"\x1b[A\x1b[B\x1b[C\x1b[D", []Key{{Code: KeyUp}, {Code: KeyDown}, {Code: KeyRight}, {Code: KeyLeft}}},
		{"\x1b[3~", []Key{{Code: KeyDelete}}},
		{"\x1b[1;5C", nil},
		{"é\t", []Key{{Code: KeyRune, Rune: 'é'}, {Code: KeyTab}}},
		{"\x00", nil},
	}

	for _, tc := range tests {
		got := DecodeKeys(tc.input)
		assert.Equal(t, tc.want, got, "%q", tc.input)
	}
}

// =============================================================================
// STACK TESTS
// =============================================================================

type countingMode struct {
	keys       []Key
	activation int
}

func (c *countingMode) HandleKey(k Key) { c.keys = append(c.keys, k) }
func (c *countingMode) Activate() { c.activation++ }

func TestStackNeverPopsBase(t *testing.T) {
	base := &countingMode{}
	s := NewStack(base, nil)

	assert.False(t, s.Pop(base))
	assert.Equal(t, 1, s.Depth())
	assert.Same(t, base, s.Current())
}

func TestStackRoutesToTop(t *testing.T) {
	base := &countingMode{}
	top := &countingMode{}
	s := NewStack(base, nil)

	s.Push(top)
	assert.Equal(t, 1, top.activation)
	s.HandleInput("ab")
	assert.Len(t, top.keys, 2)
	assert.Empty(t, base.keys)

	assert.True(t, s.Pop(top))
	assert.Equal(t, 1, base.activation)
	s.HandleInput("c")
	assert.Len(t, base.keys, 1)
}

// =============================================================================
// COMMAND LINE TESTS
// =============================================================================

func TestCommandLineTabCompletes(t *testing.T) {
	stack, _, base, _ := newTestShell(t)

	stack.HandleInput("hel\t")
	assert.Equal(t, "help ", base.Line())
}

func TestCommandLineSecondTabLists(t *testing.T) {
	stack, _, base, display := newTestShell(t)

	stack.HandleInput("h\t\t")
	assert.Equal(t, "h", base.Line())
	out := display.String()
	assert.Contains(t, out, "hash")
	assert.Contains(t, out, "history")
}

func TestCommandLineSubmitAndBusy(t *testing.T) {
	var submitted []string
	interrupts := 0
	display := &fakeDisplay{}
	base := NewCommandLineMode(CommandLineConfig{
		Display:     display,
		OnSubmit:    func(line string) { submitted = append(submitted, line) },
		OnInterrupt: func() { interrupts++ },
	})
	stack := NewStack(base, nil)

	stack.HandleInput("echo hi\r")
	assert.Equal(t, []string{"echo hi"}, submitted)
	assert.True(t, base.Busy())

	// Typing is ignored and Ctrl+C interrupts while busy.
	stack.HandleInput("x\x03")
	assert.Equal(t, "", base.Line())
	assert.Equal(t, 1, interrupts)

	base.Ready()
	assert.False(t, base.Busy())

	// Blank lines are not submitted.
	stack.HandleInput("   \r")
	assert.Len(t, submitted, 1)
}

func TestCommandLineCtrlCClears(t *testing.T) {
	stack, _, base, _ := newTestShell(t)
	stack.HandleInput("abc\x03")
	assert.Equal(t, "", base.Line())
}

func TestCommandLineEditing(t *testing.T) {
	stack, _, base, _ := newTestShell(t)

	stack.HandleInput("helo\x1b[Dl")
	assert.Equal(t, "hello", base.Line())

	stack.HandleInput("\x05\x7f\x7f")
	assert.Equal(t, "hel", base.Line())

	stack.HandleInput("\x01X")
	assert.Equal(t, "Xhel", base.Line())

	stack.HandleInput("\x05 world\x17")
	assert.Equal(t, "Xhel ", base.Line())
}

func TestCommandLineHistory(t *testing.T) {
	stack, _, base, _ := newTestShell(t)
	base.cfg.History.Add("first")
	base.cfg.History.Add("second")

	stack.HandleInput("draft\x1b[A")
	assert.Equal(t, "second", base.Line())
	stack.HandleInput("\x1b[A\x1b[A")
	assert.Equal(t, "first", base.Line())
	stack.HandleInput("\x1b[B\x1b[B")
	assert.Equal(t, "draft", base.Line())
}

func TestCommandLineCtrlDExits(t *testing.T) {
	exited := false
	base := NewCommandLineMode(CommandLineConfig{Display: &fakeDisplay{}, OnExit: func() { exited = true }})
	stack := NewStack(base, nil)

	stack.HandleInput("a\x04")
	assert.False(t, exited)
	stack.HandleInput("\x7f\x04")
	assert.True(t, exited)
}

// =============================================================================
// READER TESTS
// =============================================================================

func TestReadLine(t *testing.T) {
	stack, reader, _, _ := newTestShell(t)

	got := make(chan string)
	go func() {
		line, err := reader.ReadLine(context.Background(), "name: ")
		assert.NoError(t, err)
		got <- line
	}()

	waitForPrompt(t, stack)
	stack.HandleInput("ada\r")

	assert.Equal(t, "ada", <-got)
	assert.Equal(t, 1, stack.Depth())
	assert.False(t, reader.Active())
}

func TestReadPasswordMasks(t *testing.T) {
	stack, reader, _, display := newTestShell(t)

	got := make(chan string)
	go func() {
		pw, err := reader.ReadPassword(context.Background(), "pw: ")
		assert.NoError(t, err)
		got <- pw
	}()

	waitForPrompt(t, stack)
	stack.HandleInput("s3cret\r")

	assert.Equal(t, "s3cret", <-got)
	assert.NotContains(t, display.String(), "s3cret")
	assert.Contains(t, display.String(), "******")
}

func TestReadConfirm(t *testing.T) {
	tests := []struct {
		keys string
		def  bool
		want bool
	}{
		{"y\r", false, true},
		{"N\r", true, false},
		{"yn\r", true, false},
		{"y\x7f\r", false, false},
		{"x\r", true, true},
		{"\r", false, false},
	}

	for _, tc := range tests {
		stack, reader, _, _ := newTestShell(t)
		got := make(chan bool)
		go func() {
			ok, err := reader.ReadConfirm(context.Background(), "sure?", tc.def)
			assert.NoError(t, err)
			got <- ok
		}()

		waitForPrompt(t, stack)
		stack.HandleInput(tc.keys)
		assert.Equal(t, tc.want, <-got, "keys %q", tc.keys)
	}
}

func TestReadConfirmWaitsForEnter(t *testing.T) {
	stack, reader, _, display := newTestShell(t)
	got := make(chan bool, 1)
	go func() {
		ok, err := reader.ReadConfirm(context.Background(), "sure?", false)
		assert.NoError(t, err)
		got <- ok
	}()

	waitForPrompt(t, stack)
	stack.HandleInput("y")
	select {
	case <-got:
		t.Fatal("confirm resolved before Enter")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Contains(t, display.String(), "[y/N] y")

	stack.HandleInput("\r")
	assert.True(t, <-got)
}

func TestReadSelect(t *testing.T) {
	stack, reader, _, _ := newTestShell(t)

	var mu sync.Mutex
	var changes []int
	got := make(chan int)
	go func() {
		idx, err := reader.ReadSelect(context.Background(), "pick", []string{"a", "b", "c"}, func(i int) {
			mu.Lock()
			changes = append(changes, i)
			mu.Unlock()
		})
		assert.NoError(t, err)
		got <- idx
	}()

	waitForPrompt(t, stack)
	stack.HandleInput("\x1b[A\x1b[B\x1b[B\x1b[B\r")

	assert.Equal(t, 2, <-got)
	mu.Lock()
	assert.Equal(t, []int{1, 2}, changes)
	mu.Unlock()
}

func TestReadSelectNoOptions(t *testing.T) {
	_, reader, _, _ := newTestShell(t)
	_, err := reader.ReadSelect(context.Background(), "pick", nil, nil)
	assert.Error(t, err)
}

func TestReaderCancelKeys(t *testing.T) {
	for _, key := range []string{"\x1b", "\x03"} {
		stack, reader, _, _ := newTestShell(t)
		errs := make(chan error)
		go func() {
			_, err := reader.ReadLine(context.Background(), "> ")
			errs <- err
		}()

		waitForPrompt(t, stack)
		stack.HandleInput("partial" + key)
		assert.ErrorIs(t, <-errs, commands.ErrCanceled)
		assert.Equal(t, 1, stack.Depth())
	}
}

func TestReaderContextCancel(t *testing.T) {
	stack, reader, _, _ := newTestShell(t)
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error)
	go func() {
		_, err := reader.ReadLine(ctx, "> ")
		errs <- err
	}()

	waitForPrompt(t, stack)
	cancel()
	err := <-errs
	assert.ErrorIs(t, err, commands.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stack.Depth())
}

func TestReaderSingleActiveRequest(t *testing.T) {
	stack, reader, _, _ := newTestShell(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = reader.ReadLine(context.Background(), "> ")
	}()

	waitForPrompt(t, stack)
	_, err := reader.ReadConfirm(context.Background(), "again?", true)
	assert.ErrorIs(t, err, commands.ErrRequestActive)

	reader.Cancel()
	<-done
	assert.False(t, reader.Active())
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestHistoryBoundsAndDedup(t *testing.T) {
	var saved []string
	h := NewHistory(3, []string{"a"}, func(entries []string) { saved = entries })

	h.Add("b")
	h.Add("b")
	h.Add("  ")
	h.Add("c")
	h.Add("d")

	assert.Equal(t, []string{"b", "c", "d"}, h.Entries())
	assert.Equal(t, []string{"b", "c", "d"}, saved)

	h.Clear()
	assert.Empty(t, h.Entries())
	assert.Empty(t, saved)
}

func TestFormatColumns(t *testing.T) {
	lines := FormatColumns([]string{"aa", "bb", "cc", "dd", "ee"}, 12)
	assert.Equal(t, []string{"aa  cc  ee", "bb  dd"}, lines)

	assert.Equal(t, []string{"x"}, FormatColumns([]string{"x"}, 0))
}
