// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/util"
)

// defaultContext is the number of unchanged lines shown around a change.
const defaultContext = 3

func diffProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "diff",
		Description: "Compare two files line by line",
		Usage:       "diff [-U n] [--stat] <old> <new>",
		Category:    CategoryText,
		Parameters: []commands.Parameter{
			{Name: "old", Type: commands.ParamPath, Positional: true, Required: true, Description: "Original file"},
			{Name: "new", Type: commands.ParamPath, Positional: true, Required: true, Description: "Changed file"},
			{
				Name:        "context",
				Aliases:     []string{"U"},
				Type:        commands.ParamNumber,
				Default:     int64(defaultContext),
				Description: "Lines of context around changes",
				Validator: func(v any) error {
					if n, ok := v.(int64); ok && n < 0 {
						return errors.New("must not be negative")
					}
					return nil
				},
			},
			{Name: "stat", Type: commands.ParamBoolean, Description: "Print counts instead of hunks"},
		},
		Handler: runDiff,
	})
}

// runDiff exits 1 when the files differ, like diff(1).
func runDiff(_ context.Context, ec *commands.ExecutionContext) error {
	oldPath := ec.Args.String("old", "")
	newPath := ec.Args.String("new", "")

	oldData, err := os.ReadFile(util.ExpandHome(oldPath))
	if err != nil {
		return err
	}
	newData, err := os.ReadFile(util.ExpandHome(newPath))
	if err != nil {
		return err
	}

	d := ComputeDiff(string(oldData), string(newData), int(ec.Args.Int("context", defaultContext)))

	if ec.Args.Bool("stat") {
		ec.Writer.WriteJSON(map[string]any{
			"additions": d.Additions,
			"deletions": d.Deletions,
			"hunks":     len(d.Hunks),
		})
	} else if len(d.Hunks) > 0 {
		ec.Writer.Write(d.Unified(oldPath, newPath))
	}

	if d.Additions+d.Deletions > 0 {
		return commands.Exit(commands.ExitFailure, nil)
	}
	return nil
}

// =============================================================================
// LINE DIFF
// =============================================================================

// EditKind is the kind of one line in an edit script.
type EditKind int

const (
	EditKeep EditKind = iota
	EditAdd
	EditRemove
)

// Prefix returns the unified diff marker for k.
func (k EditKind) Prefix() string {
	switch k {
	case EditAdd:
		return "+"
	case EditRemove:
		return "-"
	default:
		return " "
	}
}

// Edit is one line of an edit script. OldLine and NewLine are 1-based and
// zero when the line is absent on that side.
type Edit struct {
	Kind    EditKind
	Text    string
	OldLine int
	NewLine int
}

// Hunk is a run of edits with surrounding context.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Edits              []Edit
}

// LineDiff is the result of ComputeDiff.
type LineDiff struct {
	Edits     []Edit
	Hunks     []Hunk
	Additions int
	Deletions int
}

// ComputeDiff diffs two texts by lines using a longest common subsequence.
// Hunks carry up to contextLines unchanged lines on each side; hunks whose
// context would overlap are merged.
func ComputeDiff(oldText, newText string, contextLines int) *LineDiff {
	a, b := diffLines(oldText), diffLines(newText)
	d := &LineDiff{Edits: editScript(a, b)}
	for _, e := range d.Edits {
		switch e.Kind {
		case EditAdd:
			d.Additions++
		case EditRemove:
			d.Deletions++
		}
	}
	d.Hunks = groupHunks(d.Edits, contextLines)
	return d
}

func diffLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// editScript walks the suffix LCS table, preferring removals over additions
// so that a replaced line reads as - then +.
func editScript(a, b []string) []Edit {
	m, n := len(a), len(b)
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	edits := make([]Edit, 0, m+n)
	i, j := 0, 0
	for i < m || j < n {
		switch {
		case i < m && j < n && a[i] == b[j]:
			edits = append(edits, Edit{Kind: EditKeep, Text: a[i], OldLine: i + 1, NewLine: j + 1})
			i++
			j++
		case i < m && (j == n || lcs[i+1][j] >= lcs[i][j+1]):
			edits = append(edits, Edit{Kind: EditRemove, Text: a[i], OldLine: i + 1})
			i++
		default:
			edits = append(edits, Edit{Kind: EditAdd, Text: b[j], NewLine: j + 1})
			j++
		}
	}
	return edits
}

func groupHunks(edits []Edit, contextLines int) []Hunk {
	// Old and new lines consumed before each edit.
	oldBefore := make([]int, len(edits)+1)
	newBefore := make([]int, len(edits)+1)
	for i, e := range edits {
		oldBefore[i+1], newBefore[i+1] = oldBefore[i], newBefore[i]
		if e.Kind != EditAdd {
			oldBefore[i+1]++
		}
		if e.Kind != EditRemove {
			newBefore[i+1]++
		}
	}

	var hunks []Hunk
	start, end := -1, -1
	flush := func() {
		if start < 0 {
			return
		}
		h := Hunk{
			OldStart: oldBefore[start] + 1,
			NewStart: newBefore[start] + 1,
			OldCount: oldBefore[end] - oldBefore[start],
			NewCount: newBefore[end] - newBefore[start],
			Edits:    edits[start:end],
		}
		// An empty side points at the line before the hunk.
		if h.OldCount == 0 {
			h.OldStart--
		}
		if h.NewCount == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
	}

	for i, e := range edits {
		if e.Kind == EditKeep {
			continue
		}
		lo := max(0, i-contextLines)
		hi := min(len(edits), i+1+contextLines)
		if start >= 0 && lo <= end {
			end = max(end, hi)
			continue
		}
		flush()
		start, end = lo, hi
	}
	flush()
	return hunks
}

// Unified renders the diff in unified format with the given file labels.
func (d *LineDiff) Unified(oldName, newName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", oldName, newName)
	for _, h := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, e := range h.Edits {
			b.WriteString(e.Kind.Prefix())
			b.WriteString(e.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
