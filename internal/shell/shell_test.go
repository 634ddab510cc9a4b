// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/config"
	"github.com/jeranaias/termshell/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("os/signal.loop"))
}

// syncBuffer is a bytes.Buffer safe for the concurrent writes of the raw
// frontend.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.Path = storage.MemoryPath
	cfg.Log.Level = "off"
	cfg.UI.Color = "never"
	cfg.Shell.AbortGraceMs = 0
	return cfg
}

func newShell(t *testing.T, in string) (*Shell, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	s, err := New(context.Background(), Options{
		Config: testConfig(),
		In:     strings.NewReader(in),
		Out:    out,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, out
}

// =============================================================================
// ONE-SHOT TESTS
// =============================================================================

func TestRunLine(t *testing.T) {
	s, out := newShell(t, "")

	code, err := s.RunLine(context.Background(), "echo hello | upper")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "HELLO")

	code, err = s.RunLine(context.Background(), "nosuch")
	require.NoError(t, err)
	assert.Equal(t, commands.ExitNotFound, code)
}

func TestServicesWired(t *testing.T) {
	s, _ := newShell(t, "")
	for _, name := range []string{
		commands.ServiceStore, commands.ServiceConfig, commands.ServiceSession,
		commands.ServiceHistory, commands.ServiceRegistry, commands.ServiceTheme,
	} {
		_, ok := s.Services().Lookup(name)
		assert.True(t, ok, name)
	}
	assert.NotNil(t, s.Registry().Get("theme"))
}

func TestThemePersistsInStore(t *testing.T) {
	s, _ := newShell(t, "")
	code, err := s.RunLine(context.Background(), "theme apply ocean")
	require.NoError(t, err)
	require.Equal(t, 0, code)

	assert.Equal(t, "ocean", s.writer.Theme().Name)
	name, err := s.store.Get(context.Background(), "theme.name")
	require.NoError(t, err)
	assert.Equal(t, "ocean", name)
}

// =============================================================================
// SETTINGS TESTS
// =============================================================================

func TestApply(t *testing.T) {
	s, _ := newShell(t, "")

	cfg := s.Current()
	cfg.Prompt = "$ "
	cfg.UI.Theme = "light"
	require.NoError(t, s.Apply(cfg))
	assert.Equal(t, "$ ", s.Current().Prompt)
	assert.Equal(t, "light", s.writer.Theme().Name)

	cfg.UI.LineEditor = "vim"
	assert.Error(t, s.Apply(cfg))
	assert.Equal(t, "raw", s.Current().UI.LineEditor)

	// Current hands out copies.
	s.Current().Prompt = "mutated"
	assert.Equal(t, "$ ", s.Current().Prompt)
}

func TestConfigCommandUsesShellSettings(t *testing.T) {
	s, _ := newShell(t, "")
	code, err := s.RunLine(context.Background(), "config set prompt 'ts> '")
	require.NoError(t, err)
	require.Equal(t, 0, code)
	assert.Equal(t, "ts> ", s.Current().Prompt)
}

func TestWatchConfigReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	write := func(prompt string) {
		data := "prompt = \"" + prompt + "\"\n\n[storage]\npath = \":memory:\"\n\n[log]\nlevel = \"off\"\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0600))
	}
	write("a> ")

	s, err := New(context.Background(), Options{ConfigPath: path, In: strings.NewReader(""), Out: &syncBuffer{}})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "a> ", s.Current().Prompt)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.watchConfig(ctx, path)
	}()

	time.Sleep(100 * time.Millisecond)
	write("b> ")
	assert.Eventually(t, func() bool { return s.Current().Prompt == "b> " }, 5*time.Second, 50*time.Millisecond)

	cancel()
	<-done
}

// =============================================================================
// RAW FRONTEND TESTS
// =============================================================================

func TestRawFrontendRunsInput(t *testing.T) {
	s, out := newShell(t, "echo hi there && exit 3\r")

	code, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Contains(t, out.String(), "hi there")

	lines, err := s.store.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"echo hi there && exit 3"}, lines)
}

func TestRawFrontendEndsOnEOF(t *testing.T) {
	s, out := newShell(t, "fail-me\r")

	code, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, commands.ExitNotFound, code)
	assert.Contains(t, out.String(), "unknown command")
}

func TestRawFrontendCtrlDExits(t *testing.T) {
	s, _ := newShell(t, "\x04")
	code, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestInterruptCancelsRunningCommand(t *testing.T) {
	s, _ := newShell(t, "")
	require.NoError(t, s.start(nil))

	started := make(chan struct{})
	s.registry.MustRegister(&commands.Processor{
		Command: "block",
		Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	})

	// Nothing submitted yet.
	s.waitIdle()

	s.submit(context.Background(), "block")
	<-started
	s.interrupt()
	s.waitIdle()
	assert.Equal(t, commands.ExitCanceled, s.last())
}

func TestWaitIdleWaitsForRunningLine(t *testing.T) {
	s, _ := newShell(t, "")
	require.NoError(t, s.start(nil))

	release := make(chan struct{})
	s.registry.MustRegister(&commands.Processor{
		Command: "hold",
		Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
			<-release
			return commands.Exit(4, nil)
		},
	})

	s.submit(context.Background(), "hold")

	waited := make(chan struct{})
	go func() {
		s.waitIdle()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("waitIdle returned while the line was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-waited
	assert.Equal(t, 4, s.last())
}

// =============================================================================
// LINER READER TESTS
// =============================================================================

func TestParseConfirm(t *testing.T) {
	tests := []struct {
		answer  string
		def     bool
		yes, ok bool
	}{
		{"", true, true, true},
		{"", false, false, true},
		{"Y", false, true, true},
		{" yes ", false, true, true},
		{"no", true, false, true},
		{"maybe", true, false, false},
	}
	for _, tc := range tests {
		yes, ok := parseConfirm(tc.answer, tc.def)
		assert.Equal(t, tc.yes, yes, tc.answer)
		assert.Equal(t, tc.ok, ok, tc.answer)
	}
}

func TestParseSelect(t *testing.T) {
	options := []string{"red", "Green", "blue"}
	tests := []struct {
		answer string
		idx    int
		ok     bool
	}{
		{"1", 0, true},
		{"3", 2, true},
		{"green", 1, true},
		{"0", -1, false},
		{"4", -1, false},
		{"purple", -1, false},
	}
	for _, tc := range tests {
		idx, ok := parseSelect(tc.answer, options)
		assert.Equal(t, tc.idx, idx, tc.answer)
		assert.Equal(t, tc.ok, ok, tc.answer)
	}
}

func TestCompleteWord(t *testing.T) {
	s, _ := newShell(t, "")

	head, cands, tail := s.completeWord("theme ap", 8)
	assert.Equal(t, "theme ", head)
	assert.Equal(t, []string{"apply"}, cands)
	assert.Equal(t, "", tail)

	head, cands, tail = s.completeWord("zzz", 3)
	assert.Equal(t, "zzz", head)
	assert.Empty(t, cands)
	assert.Equal(t, "", tail)
}

func TestMaskRune(t *testing.T) {
	assert.Equal(t, rune(0), maskRune(""))
	assert.Equal(t, '•', maskRune("•"))
}
