// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// =============================================================================
// PROVIDERS
// =============================================================================

// Provider supplies candidates for a completion context.
type Provider interface {
	// Priority orders providers; lower runs first.
	Priority() int

	// Complete returns full replacement values for ctx.Token.
	Complete(ctx Context) []string
}

// =============================================================================
// RESULT
// =============================================================================

// Action tells the line editor what to do with a Result.
type Action int

const (
	ActionNone           Action = iota // Nothing to do
	ActionComplete                     // Replace the token with Replacement
	ActionShowCandidates               // List Candidates below the line
)

// Result is the outcome of one Tab press.
type Result struct {
	Action Action

	// Replacement is the new token text for ActionComplete
	Replacement string

	// TokenStart and TokenEnd bound the text Replacement replaces
	TokenStart int
	TokenEnd   int

	// Candidates are the winning provider's values
	Candidates []string

	// Final is true when exactly one candidate matched; the editor appends
	// a space after it
	Final bool
}

// Apply returns input with the completion applied and the new cursor offset.
func (r Result) Apply(input string) (string, int) {
	if r.Action != ActionComplete {
		return input, len(input)
	}
	insert := r.Replacement
	if r.Final && !strings.HasSuffix(insert, "/") {
		insert += " "
	}
	out := input[:r.TokenStart] + insert + input[r.TokenEnd:]
	return out, r.TokenStart + len(insert)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs providers and tracks repeated Tab presses.
type Engine struct {
	mu        sync.Mutex
	providers []Provider
	lastInput string
	lastPos   int
	tabCount  int
}

// NewEngine creates an engine with the given providers.
func NewEngine(providers ...Provider) *Engine {
	e := &Engine{}
	for _, p := range providers {
		e.AddProvider(p)
	}
	return e
}

// AddProvider registers p, keeping providers sorted by priority.
func (e *Engine) AddProvider(p Provider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.providers = append(e.providers, p)
	sort.SliceStable(e.providers, func(i, j int) bool {
		return e.providers[i].Priority() < e.providers[j].Priority()
	})
}

// Reset forgets the Tab count. Call it on every non-Tab keystroke.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.lastInput = ""
	e.lastPos = -1
	e.tabCount = 0
}

// Candidates returns the winning provider's candidates without touching the
// Tab state.
func (e *Engine) Candidates(input string, cursor int) (Context, []string) {
	ctx := BuildContext(input, cursor)

	e.mu.Lock()
	providers := append([]Provider(nil), e.providers...)
	e.mu.Unlock()

	for _, p := range providers {
		if cands := dedupe(p.Complete(ctx)); len(cands) > 0 {
			return ctx, cands
		}
	}
	return ctx, nil
}

// Complete handles a Tab press at cursor.
//
// On the first press a single candidate completes the token, and several
// candidates extend it to their longest common prefix when that is longer
// than the token. Further presses on the same input list the candidates.
func (e *Engine) Complete(input string, cursor int) Result {
	ctx, cands := e.Candidates(input, cursor)

	e.mu.Lock()
	defer e.mu.Unlock()

	if input == e.lastInput && ctx.Cursor == e.lastPos {
		e.tabCount++
	} else {
		e.lastInput = input
		e.lastPos = ctx.Cursor
		e.tabCount = 1
	}

	res := Result{
		TokenStart: ctx.TokenStart,
		TokenEnd:   ctx.TokenEnd,
		Candidates: cands,
	}

	if len(cands) == 0 {
		return res
	}

	if e.tabCount > 1 {
		res.Action = ActionShowCandidates
		return res
	}

	if len(cands) == 1 {
		res.Action = ActionComplete
		res.Replacement = cands[0]
		res.Final = true
		e.resetLocked()
		return res
	}

	if prefix := CommonPrefix(cands); utf8.RuneCountInString(prefix) > utf8.RuneCountInString(ctx.Token) {
		res.Action = ActionComplete
		res.Replacement = prefix
	}
	return res
}

// CommonPrefix returns the longest prefix shared by all values, compared
// rune by rune.
func CommonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := []rune(values[0])
	for _, v := range values[1:] {
		r := []rune(v)
		n := 0
		for n < len(prefix) && n < len(r) && prefix[n] == r[n] {
			n++
		}
		prefix = prefix[:n]
		if n == 0 {
			break
		}
	}
	return string(prefix)
}

func dedupe(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]bool, len(values))
	out := values[:0:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// filterPrefix keeps values starting with prefix, ignoring case, and sorts them.
func filterPrefix(values []string, prefix string) []string {
	lower := strings.ToLower(prefix)
	var out []string
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), lower) {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
