// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SPLIT TESTS
// =============================================================================

func TestSplitByOperators(t *testing.T) {
	cmd := func(s string) CommandPart { return CommandPart{Kind: PartCommand, Text: s} }
	op := func(k PartKind) CommandPart { return CommandPart{Kind: k} }

	tests := []struct {
		name  string
		input string
		want  []CommandPart
	}{
		{"single", "help", []CommandPart{cmd("help")}},
		{"and", "a && b", []CommandPart{cmd("a"), op(PartAnd), cmd("b")}},
		{"or", "a || b", []CommandPart{cmd("a"), op(PartOr), cmd("b")}},
		{"pipe", "a | b", []CommandPart{cmd("a"), op(PartPipe), cmd("b")}},
		{"append", "a >> out.txt", []CommandPart{cmd("a"), op(PartAppend), cmd("out.txt")}},
		{"no spaces", "a&&b||c", []CommandPart{cmd("a"), op(PartAnd), cmd("b"), op(PartOr), cmd("c")}},
		{"double quoted operator", `echo "a | b" | upper`, []CommandPart{cmd(`echo "a | b"`), op(PartPipe), cmd("upper")}},
		{"single quoted operator", `echo 'x && y'`, []CommandPart{cmd(`echo 'x && y'`)}},
		{"empty command dropped", "a && && b", []CommandPart{cmd("a"), op(PartAnd), op(PartAnd), cmd("b")}},
		{"blank", "   ", nil},
		{"or before pipe", "a||b", []CommandPart{cmd("a"), op(PartOr), cmd("b")}},
		{"escaped quote keeps operator quoted", `echo "a \" && b"`, []CommandPart{cmd(`echo "a \" && b"`)}},
		{"escaped backslash closes quote", `echo "a \\" && b`, []CommandPart{cmd(`echo "a \\"`), op(PartAnd), cmd("b")}},
		{"escaped quote in single quotes", `echo 'it\'s | x' | upper`, []CommandPart{cmd(`echo 'it\'s | x'`), op(PartPipe), cmd("upper")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitByOperators(tc.input)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("SplitByOperators(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestLastSegmentStart(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"help", 0},
		{"echo hi | up", 9},
		{"a && b", 4},
		{`echo "x | y"`, 0},
		{"a >> ", 4},
		{`echo "x \" | y"`, 0},
		{`echo "x \\" | y`, 13},
	}

	for _, tc := range tests {
		if got := LastSegmentStart(tc.input); got != tc.want {
			t.Errorf("LastSegmentStart(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestSplitAgreesWithTokenize(t *testing.T) {
	for _, line := range []string{
		`echo "a \" && b"`,
		`echo 'x \' || y' z`,
		`grep "\\" | upper`,
	} {
		var words []string
		for _, part := range SplitByOperators(line) {
			if part.Kind == PartCommand {
				words = append(words, Tokenize(part.Text)...)
			}
		}
		want := Tokenize(line)
		// Operators outside quotes are separate words in Tokenize.
		var filtered []string
		for _, w := range want {
			if w != "&&" && w != "||" && w != "|" && w != ">>" {
				filtered = append(filtered, w)
			}
		}
		if diff := cmp.Diff(filtered, words); diff != "" {
			t.Errorf("%q: split and tokenize disagree (-tokenize +split):\n%s", line, diff)
		}
	}
}

// =============================================================================
// TOKENIZER TESTS
// =============================================================================

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a b  c", []string{"a", "b", "c"}},
		{`say "hello world"`, []string{"say", "hello world"}},
		{`say 'it''s'`, []string{"say", "its"}},
		{`say "a \"b\""`, []string{"say", `a "b"`}},
		{`--msg="x y"`, []string{"--msg=x y"}},
		{`""`, []string{""}},
		{"", nil},
	}

	for _, tc := range tests {
		got := Tokenize(tc.input)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tc.input, diff)
		}
	}
}

func TestScanWordsOffsets(t *testing.T) {
	words := ScanWords(`cp "my file" dst`)
	require.Len(t, words, 3)
	assert.Equal(t, 3, words[1].Start)
	assert.Equal(t, 12, words[1].End)
	assert.True(t, words[1].Quoted)
	assert.False(t, words[2].Quoted)
}

// =============================================================================
// SEGMENT TESTS
// =============================================================================

func TestParseSegmentForms(t *testing.T) {
	p := ParseSegment(`deploy --env=prod --msg "ship it" -v --count=3 now`)

	assert.Equal(t, "deploy now", p.Name)
	assert.Equal(t, []string{"deploy", "now"}, p.Words)
	assert.Equal(t, []Arg{
		{Name: "env", Value: "prod"},
		{Name: "msg", Value: "ship it"},
		{Name: "v", Value: true},
		{Name: "count", Value: int64(3)},
	}, p.Args)
}

func TestParseSegmentCoercion(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"--n=42", int64(42)},
		{"--n=4.5", 4.5},
		{"--n=true", true},
		{"--n=false", false},
		{"--n=abc", "abc"},
		{`--n="42"`, "42"},
		{"--n", true},
	}

	for _, tc := range tests {
		p := ParseSegment(tc.input)
		got, ok := p.Arg("n")
		require.True(t, ok, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}
}

func TestParseSegmentNegativeNumberIsWord(t *testing.T) {
	p := ParseSegment("add -5 --by -2")
	assert.Equal(t, []string{"add", "-5", "-2"}, p.Words)
	assert.Equal(t, []Arg{{Name: "by", Value: true}}, p.Args)
}

func TestParseSegmentDoubleDash(t *testing.T) {
	p := ParseSegment("echo -- -n --x")
	assert.Equal(t, []string{"echo", "-n", "--x"}, p.Words)
	assert.Empty(t, p.Args)
}

func TestParseSegmentQuotedDashIsWord(t *testing.T) {
	p := ParseSegment(`grep "-v"`)
	assert.Equal(t, []string{"grep", "-v"}, p.Words)
	assert.Empty(t, p.Args)
}

func TestParseSegmentTokenOrder(t *testing.T) {
	p := ParseSegment("curl -H a -H b")
	require.Len(t, p.Tokens, 5)
	assert.True(t, p.Tokens[1].Flag)
	assert.False(t, p.Tokens[1].HasValue)
	assert.Equal(t, "a", p.Tokens[2].Text)
	assert.Equal(t, 1, p.Tokens[2].WordIndex)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"1e3", 1000.0},
		{"inf", "inf"},
		{"NaN", "NaN"},
		{"0x10", "0x10"},
		{"yes", "yes"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := Coerce(tc.in); got != tc.want {
			t.Errorf("Coerce(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
