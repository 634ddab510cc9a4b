// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termshell/internal/parser"
)

func bind(line string, params []Parameter, chainLen int) (BoundArgs, []string) {
	return Bind(parser.ParseSegment(line), params, chainLen)
}

// =============================================================================
// BINDING TESTS
// =============================================================================

func TestBindAliasStoredUnderAllNames(t *testing.T) {
	params := []Parameter{{Name: "verbose", Aliases: []string{"v", "loud"}, Type: ParamBoolean}}

	for _, line := range []string{"run --verbose", "run -v", "run --loud"} {
		args, _ := bind(line, params, 1)
		assert.Equal(t, true, args["verbose"], line)
		assert.Equal(t, true, args["v"], line)
		assert.Equal(t, true, args["loud"], line)
	}
}

func TestBindArrayAccumulates(t *testing.T) {
	params := []Parameter{{Name: "header", Aliases: []string{"H"}, Type: ParamArray}}

	args, positional := bind("curl -H a -H b -H c", params, 1)
	assert.Equal(t, []string{"a", "b", "c"}, args["header"])
	assert.Equal(t, []string{"a", "b", "c"}, args["H"])
	assert.Empty(t, positional)

	args, _ = bind("curl --header=x --header y", params, 1)
	assert.Equal(t, []string{"x", "y"}, args.Strings("header"))
}

func TestBindBooleanDoesNotConsumeWords(t *testing.T) {
	params := []Parameter{
		{Name: "recursive", Aliases: []string{"r"}, Type: ParamBoolean},
		{Name: "src", Type: ParamPath, Positional: true, Required: true},
		{Name: "dest", Type: ParamPath, Positional: true, Required: true},
	}

	args, positional := bind("cp -r src dest", params, 1)
	assert.True(t, args.Bool("recursive"))
	assert.True(t, args.Bool("r"))
	assert.Equal(t, []string{"src", "dest"}, positional)
	assert.Equal(t, "src", args["src"])
	assert.Equal(t, "dest", args["dest"])
	assert.NoError(t, Validate("cp", args, params))
}

func TestBindBooleanTruthTable(t *testing.T) {
	params := []Parameter{{Name: "force", Type: ParamBoolean}}

	tests := []struct {
		line string
		want bool
	}{
		{"x --force", true},
		{"x --force=true", true},
		{"x --force=1", true},
		{"x --force=yes", true},
		{"x --force=y", true},
		{"x --force=false", false},
		{"x --force=0", false},
		{"x --force=no", false},
		{"x --force=2", false},
	}

	for _, tc := range tests {
		args, _ := bind(tc.line, params, 1)
		if got := args.Bool("force"); got != tc.want {
			t.Errorf("bind(%q) force = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestBindUnknownPassesThrough(t *testing.T) {
	args, positional := bind("run --mystery=7 -z word", nil, 1)
	assert.Equal(t, int64(7), args["mystery"])
	assert.Equal(t, true, args["z"])
	assert.Equal(t, []string{"word"}, positional)
}

func TestBindStringKeepsText(t *testing.T) {
	params := []Parameter{
		{Name: "code", Type: ParamString},
		{Name: "count", Type: ParamNumber},
	}

	args, _ := bind("x --code=007 --count 12", params, 1)
	assert.Equal(t, "007", args["code"])
	assert.Equal(t, int64(12), args["count"])
}

func TestBindDoesNotConsumeChainWords(t *testing.T) {
	params := []Parameter{{Name: "value", Type: ParamString}}

	args, positional := bind("theme --value set background red", params, 2)
	assert.Equal(t, true, args["value"])
	assert.Equal(t, []string{"background", "red"}, positional)
}

func TestBindDefaults(t *testing.T) {
	params := []Parameter{
		{Name: "lines", Aliases: []string{"n"}, Type: ParamNumber, Default: int64(10)},
		{Name: "mode", Type: ParamString, Default: "fast"},
	}

	args, _ := bind("tail --mode slow", params, 1)
	assert.Equal(t, int64(10), args["lines"])
	assert.Equal(t, int64(10), args["n"])
	assert.Equal(t, "slow", args["mode"])
}

func TestBindPositionalArrayTakesRest(t *testing.T) {
	params := []Parameter{
		{Name: "pattern", Positional: true},
		{Name: "files", Type: ParamArray, Positional: true},
	}

	args, _ := bind("grep foo a.txt b.txt", params, 1)
	assert.Equal(t, "foo", args["pattern"])
	assert.Equal(t, []string{"a.txt", "b.txt"}, args["files"])
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidateRequired(t *testing.T) {
	params := []Parameter{{Name: "name", Required: true}}

	err := Validate("greet", BoundArgs{}, params)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Arg)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestValidateNumber(t *testing.T) {
	params := []Parameter{{Name: "n", Type: ParamNumber}}

	args, _ := bind("x --n=abc", params, 1)
	assert.Error(t, Validate("x", args, params))

	args, _ = bind("x --n=4", params, 1)
	assert.NoError(t, Validate("x", args, params))
}

func TestValidateCustomValidator(t *testing.T) {
	errOdd := errors.New("must be even")
	params := []Parameter{{
		Name: "n",
		Type: ParamNumber,
		Validator: func(v any) error {
			if v.(int64)%2 != 0 {
				return errOdd
			}
			return nil
		},
	}}

	args, _ := bind("x --n=3", params, 1)
	err := Validate("x", args, params)
	assert.ErrorIs(t, err, errOdd)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, 3, ExitCode(Exit(3, nil)))
	assert.Equal(t, ExitCanceled, ExitCode(ErrCanceled))
}
