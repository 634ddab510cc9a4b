// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termshell/internal/commands"
)

func testRegistry(t *testing.T) *commands.Registry {
	t.Helper()
	r := commands.NewRegistry()
	for _, p := range []*commands.Processor{
		{Command: "help"},
		{Command: "history"},
		{Command: "hash"},
		{Command: "quit", Aliases: []string{"q"}},
		{
			Command: "theme",
			Processors: []*commands.Processor{
				{Command: "set", Processors: []*commands.Processor{
					{Command: "background"},
					{Command: "backdrop"},
				}},
				{Command: "list"},
			},
		},
		{
			Command: "cp",
			Parameters: []commands.Parameter{
				{Name: "recursive", Aliases: []string{"r"}, Type: commands.ParamBoolean},
				{Name: "force", Aliases: []string{"f"}, Type: commands.ParamBoolean},
				{Name: "src", Type: commands.ParamPath, Positional: true},
			},
		},
	} {
		require.NoError(t, r.Register(p))
	}
	return r
}

func testEngine(t *testing.T, dir string) *Engine {
	reg := testRegistry(t)
	return NewEngine(
		ParameterProvider{Registry: reg},
		PathProvider{Registry: reg, Dir: dir},
		CommandProvider{Registry: reg},
	)
}

// =============================================================================
// CONTEXT TESTS
// =============================================================================

func TestBuildContext(t *testing.T) {
	tests := []struct {
		input      string
		cursor     int
		token      string
		tokenStart int
		tokens     []string
	}{
		{"he", 2, "he", 0, nil},
		{"theme se", 8, "se", 6, []string{"theme"}},
		{"theme ", 6, "", 6, []string{"theme"}},
		{"echo hi | up", 12, "up", 10, nil},
		{`cp "my fi`, 9, "my fi", 3, []string{"cp"}},
		{"theme set", 5, "theme", 0, nil},
	}

	for _, tc := range tests {
		ctx := BuildContext(tc.input, tc.cursor)
		assert.Equal(t, tc.token, ctx.Token, tc.input)
		assert.Equal(t, tc.tokenStart, ctx.TokenStart, tc.input)
		assert.Equal(t, tc.tokens, ctx.Tokens, tc.input)
	}
}

func TestBuildContextTokenEnd(t *testing.T) {
	ctx := BuildContext("theme set", 2)
	assert.Equal(t, "th", ctx.Token)
	assert.Equal(t, 5, ctx.TokenEnd)
}

func TestCommonPrefix(t *testing.T) {
	assert.Equal(t, "h", CommonPrefix([]string{"help", "history", "hash"}))
	assert.Equal(t, "hist", CommonPrefix([]string{"history", "historic"}))
	assert.Equal(t, "", CommonPrefix(nil))
	assert.Equal(t, "só", CommonPrefix([]string{"sól", "sóp"}))
}

// =============================================================================
// ENGINE TESTS
// =============================================================================

func TestSingleMatchCompletes(t *testing.T) {
	e := testEngine(t, t.TempDir())

	res := e.Complete("qu", 2)
	require.Equal(t, ActionComplete, res.Action)
	assert.Equal(t, "quit", res.Replacement)
	assert.True(t, res.Final)

	line, cursor := res.Apply("qu")
	assert.Equal(t, "quit ", line)
	assert.Equal(t, 5, cursor)
}

func TestCommonPrefixExtends(t *testing.T) {
	e := testEngine(t, t.TempDir())

	res := e.Complete("theme set b", 11)
	require.Equal(t, ActionComplete, res.Action)
	assert.Equal(t, "back", res.Replacement)
	assert.False(t, res.Final)
	assert.ElementsMatch(t, []string{"background", "backdrop"}, res.Candidates)
}

func TestSecondTabShowsCandidates(t *testing.T) {
	e := testEngine(t, t.TempDir())

	first := e.Complete("h", 1)
	assert.Equal(t, ActionNone, first.Action)

	second := e.Complete("h", 1)
	require.Equal(t, ActionShowCandidates, second.Action)
	assert.Equal(t, []string{"hash", "help", "history"}, second.Candidates)

	third := e.Complete("h", 1)
	assert.Equal(t, ActionShowCandidates, third.Action)
}

func TestInputChangeResetsTabCount(t *testing.T) {
	e := testEngine(t, t.TempDir())

	e.Complete("h", 1)
	res := e.Complete("he", 2)
	assert.Equal(t, ActionComplete, res.Action)
	assert.Equal(t, "help", res.Replacement)

	e.Complete("h", 1)
	e.Reset()
	res = e.Complete("h", 1)
	assert.Equal(t, ActionNone, res.Action)
}

func TestNoCandidates(t *testing.T) {
	e := testEngine(t, t.TempDir())
	res := e.Complete("zzz", 3)
	assert.Equal(t, ActionNone, res.Action)
	assert.Empty(t, res.Candidates)
}

func TestPriorityOrder(t *testing.T) {
	e := NewEngine(staticProvider{prio: 10, values: []string{"late"}}, staticProvider{prio: 1, values: []string{"early"}})
	_, cands := e.Candidates("", 0)
	assert.Equal(t, []string{"early"}, cands)

	e = NewEngine(staticProvider{prio: 10, values: []string{"late"}}, staticProvider{prio: 1})
	_, cands = e.Candidates("", 0)
	assert.Equal(t, []string{"late"}, cands)
}

type staticProvider struct {
	prio   int
	values []string
}

func (s staticProvider) Priority() int { return s.prio }
func (s staticProvider) Complete(Context) []string { return s.values }

// =============================================================================
// PROVIDER TESTS
// =============================================================================

func TestCommandProviderAliases(t *testing.T) {
	reg := testRegistry(t)
	got := CommandProvider{Registry: reg}.Complete(BuildContext("q", 1))
	assert.Equal(t, []string{"q", "quit"}, got)
}

func TestCommandProviderStopsAfterPositional(t *testing.T) {
	reg := testRegistry(t)
	got := CommandProvider{Registry: reg}.Complete(BuildContext("theme bogus ", 12))
	assert.Empty(t, got)
}

func TestParameterProvider(t *testing.T) {
	reg := testRegistry(t)
	p := ParameterProvider{Registry: reg}

	got := p.Complete(BuildContext("cp --", 5))
	assert.Equal(t, []string{"--force", "--recursive", "--src"}, got)

	got = p.Complete(BuildContext("cp -r -", 7))
	assert.Equal(t, []string{"--force", "--src", "-f"}, got)
}

func TestPathProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "guide.md"), nil, 0644))

	e := testEngine(t, dir)

	_, cands := e.Candidates("cp d", 4)
	assert.Equal(t, []string{"data.txt", "docs/"}, cands)

	res := e.Complete("cp docs/g", 9)
	require.Equal(t, ActionComplete, res.Action)
	assert.Equal(t, "docs/guide.md", res.Replacement)

	_, cands = e.Candidates("cp .h", 5)
	assert.Equal(t, []string{".hidden"}, cands)

	res = e.Complete("cp do", 5)
	line, _ := res.Apply("cp do")
	assert.Equal(t, "cp docs/", line)
}

func TestPathProviderConfiguredCommands(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))
	reg := testRegistry(t)

	p := PathProvider{Registry: reg, Dir: dir}
	assert.Empty(t, p.Complete(BuildContext("help n", 6)))

	p.Commands = []string{"help"}
	assert.Equal(t, []string{"notes.txt"}, p.Complete(BuildContext("help n", 6)))
}

func TestValueProvider(t *testing.T) {
	reg := commands.NewRegistry()
	names := func() []string { return []string{"forge", "light", "mono", "ocean"} }
	require.NoError(t, reg.Register(&commands.Processor{
		Command: "theme",
		Processors: []*commands.Processor{{
			Command: "apply",
			Parameters: []commands.Parameter{
				{Name: "name", Positional: true, Values: names},
			},
		}},
	}))
	require.NoError(t, reg.Register(&commands.Processor{
		Command: "format",
		Parameters: []commands.Parameter{
			{Name: "as", Values: func() []string { return []string{"json", "table", "yaml"} }},
			{Name: "pretty", Type: commands.ParamBoolean},
		},
	}))
	p := ValueProvider{Registry: reg}

	assert.Equal(t, []string{"mono"}, p.Complete(BuildContext("theme apply m", 13)))
	assert.Equal(t, []string{"forge", "light", "mono", "ocean"}, p.Complete(BuildContext("theme apply ", 12)))
	assert.Nil(t, p.Complete(BuildContext("theme apply mono ", 17)))
	assert.Equal(t, []string{"table"}, p.Complete(BuildContext("format --as t", 13)))
	assert.Nil(t, p.Complete(BuildContext("format --pretty t", 17)))
	assert.Nil(t, p.Complete(BuildContext("format --as=t", 13)))
}
