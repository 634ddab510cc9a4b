// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// screen is an Output that records writes.
type screen struct {
	mu    sync.Mutex
	buf   strings.Builder
	width int
}

func (s *screen) Write(str string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.WriteString(str)
}

func (s *screen) Width() int {
	if s.width == 0 {
		return 80
	}
	return s.width
}

func (s *screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func plainWriter() (*Writer, *screen) {
	sc := &screen{}
	return NewWriter(sc, MustTheme(DefaultTheme), termenv.Ascii), sc
}

// =============================================================================
// TERMINAL TESTS
// =============================================================================

func TestNonFileTerminal(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader(""), &out)

	assert.False(t, term.IsTerminal())
	assert.ErrorIs(t, term.MakeRaw(), ErrNotTerminal)
	assert.False(t, term.Raw())
	assert.NoError(t, term.Restore())

	w, h := term.Size()
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)

	term.WriteLine("hello")
	assert.Equal(t, "hello\n", out.String())
}

func TestToCRLF(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a\nb\n", "a\r\nb\r\n"},
		{"a\r\nb", "a\r\nb"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, toCRLF(tc.in), tc.in)
	}
}

func TestReadLoopDeliversAndStops(t *testing.T) {
	term := New(strings.NewReader("ls\r"), io.Discard)

	var got []string
	err := term.ReadLoop(context.Background(), func(data string) {
		got = append(got, data)
	})
	require.NoError(t, err)
	assert.Equal(t, "ls\r", strings.Join(got, ""))
}

func TestCompletePrefixHoldsPartialRune(t *testing.T) {
	euro := []byte("€") // three bytes
	assert.Equal(t, 0, completePrefix(euro[:1]))
	assert.Equal(t, 0, completePrefix(euro[:2]))
	assert.Equal(t, 3, completePrefix(euro))
	assert.Equal(t, 1, completePrefix(append([]byte("a"), euro[:2]...)))
	assert.Equal(t, 2, completePrefix([]byte("ab")))
}

func TestRefreshNotifiesOnlyOnChange(t *testing.T) {
	term := New(strings.NewReader(""), io.Discard)
	calls := 0
	term.OnResize(func(int, int) { calls++ })

	term.Refresh()
	assert.Equal(t, 0, calls)

	term.mu.Lock()
	term.width = 10
	term.mu.Unlock()
	term.Refresh()
	assert.Equal(t, 1, calls)
}

func TestColorProfileModes(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")
	var out bytes.Buffer

	assert.Equal(t, termenv.Ascii, ColorProfile(&out, "never"))
	assert.Equal(t, termenv.Ascii, ColorProfile(&out, "auto"))
	assert.NotEqual(t, termenv.Ascii, ColorProfile(&out, "always"))

	t.Setenv("FORCE_COLOR", "1")
	assert.True(t, ColorsEnabled(&out))
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorsEnabled(&out))
}

// =============================================================================
// THEME TESTS
// =============================================================================

func TestThemeSet(t *testing.T) {
	theme := MustTheme("forge")

	require.NoError(t, theme.Set("background", "red"))
	assert.Equal(t, ColorNames["red"], theme.Colors[KeyBackground])

	require.NoError(t, theme.Set("Accent", "#abc"))
	assert.Equal(t, "#ABC", theme.Colors[KeyAccent])

	require.NoError(t, theme.Set("muted", "240"))
	assert.Equal(t, "240", theme.Colors[KeyMuted])

	assert.ErrorContains(t, theme.Set("border", "red"), "unknown theme key")
	assert.ErrorContains(t, theme.Set("error", "not-a-color"), "invalid color")
	assert.ErrorContains(t, theme.Set("error", "300"), "invalid color")

	// The built-in palette is untouched.
	assert.NotEqual(t, ColorNames["red"], MustTheme("forge").Colors[KeyBackground])
}

func TestThemeLookup(t *testing.T) {
	assert.Equal(t, []string{"forge", "light", "mono", "ocean"}, ThemeNames())

	_, ok := LookupTheme("nope")
	assert.False(t, ok)
	assert.Equal(t, DefaultTheme, MustTheme("nope").Name)

	th, ok := LookupTheme("OCEAN")
	require.True(t, ok)
	assert.Equal(t, "ocean", th.Name)
	for _, key := range ThemeKeys {
		assert.NotEmpty(t, th.Colors[key], key)
	}
}

// =============================================================================
// WRITER TESTS
// =============================================================================

func TestWriterDiagnosticsPlain(t *testing.T) {
	w, sc := plainWriter()
	w.WriteError("boom")
	w.WriteWarning("careful")
	w.WriteSuccess("done")
	w.WriteInfo("fyi")

	assert.Equal(t, "✗ boom\n⚠ careful\n✓ done\nfyi\n", sc.String())
}

func TestWriterJSONPlain(t *testing.T) {
	w, sc := plainWriter()
	w.WriteJSON(map[string]any{"a": 1})
	assert.Equal(t, "{\n  \"a\": 1\n}\n", sc.String())
}

func TestWriterJSONError(t *testing.T) {
	w, sc := plainWriter()
	w.WriteJSON(make(chan int))
	assert.Contains(t, sc.String(), "encode json")
}

func TestWriterObjects(t *testing.T) {
	w, sc := plainWriter()
	w.WriteObjects([]map[string]any{
		{"name": "echo", "category": "core"},
		{"name": "theme", "category": "ui", "extra": true},
	}, "name", "category")

	out := sc.String()
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "category")
	assert.Contains(t, out, "echo")
	assert.Contains(t, out, "theme")
	assert.NotContains(t, out, "extra")
	assert.Contains(t, out, "╭")
}

func TestWriterNoRows(t *testing.T) {
	w, sc := plainWriter()
	w.WriteObjects(nil)
	assert.Equal(t, "(no rows)\n", sc.String())
}

func TestColumnsAndCells(t *testing.T) {
	cols := Columns([]map[string]any{{"b": 1}, {"a": 2, "b": 3}})
	assert.Equal(t, []string{"a", "b"}, cols)

	assert.Equal(t, "", CellText(nil))
	assert.Equal(t, "x", CellText("x"))
	assert.Equal(t, "1.5", CellText(1.5))
	assert.Equal(t, `{"k":"v"}`, CellText(map[string]any{"k": "v"}))
	assert.Equal(t, `[1,"a"]`, CellText([]any{1, "a"}))
}

func TestWriterMarkdownPlain(t *testing.T) {
	w, sc := plainWriter()
	w.WriteMarkdown("# Title\n\nSome **bold** text.")

	out := sc.String()
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestWriterProgress(t *testing.T) {
	w, sc := plainWriter()
	w.WriteProgress("copy", 0.5)
	w.WriteProgress("copy", 0.6) // throttled
	w.WriteProgress("copy", 1)

	out := sc.String()
	assert.Equal(t, 2, strings.Count(out, "\rcopy "))
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Contains(t, out, "100%")
}

func TestProgressEndsBeforeText(t *testing.T) {
	w, sc := plainWriter()
	w.WriteProgress("load", 0.2)
	w.WriteLine("next")
	assert.True(t, strings.HasSuffix(sc.String(), "\x1b[K\nnext\n"))
}

func TestSetThemeKeepsCopy(t *testing.T) {
	w, _ := plainWriter()
	th := MustTheme("mono")
	w.SetTheme(th)
	th.Colors[KeyAccent] = "1"
	assert.Equal(t, "255", w.Theme().Colors[KeyAccent])
}
