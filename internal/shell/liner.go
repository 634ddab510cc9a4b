// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"

	"github.com/peterh/liner"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/util"
)

// runLiner drives the session with the liner line editor.
func (s *Shell) runLiner(ctx context.Context) (int, error) {
	state := liner.NewLiner()
	defer state.Close()

	state.SetCtrlCAborts(true)
	state.SetTabCompletionStyle(liner.TabPrints)
	state.SetWordCompleter(s.completeWord)
	for _, line := range s.history.Entries() {
		state.AppendHistory(line)
	}

	reader := &linerReader{state: state, writer: s.writer}
	if err := s.start(reader); err != nil {
		return 1, err
	}

	for !s.exited() {
		if err := ctx.Err(); err != nil {
			return s.last(), nil
		}

		text, err := state.Prompt(s.Current().Prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(os.Stdout)
			return s.last(), nil
		case err != nil:
			return 1, fmt.Errorf("read line: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		state.AppendHistory(text)
		s.history.Add(text)

		runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		res := s.exec.Execute(runCtx, text, s.writer)
		stop()
		s.setLastCode(res.ExitCode)
	}
	return s.code(), nil
}

// completeWord bridges liner's word completer to the completion engine.
func (s *Shell) completeWord(line string, pos int) (head string, completions []string, tail string) {
	ctx, cands := s.engine.Candidates(line, pos)
	if len(cands) == 0 {
		return line[:pos], nil, line[pos:]
	}
	if limit := s.Current().Completion.MaxCandidates; limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	return line[:ctx.TokenStart], cands, line[ctx.TokenEnd:]
}

// =============================================================================
// READER
// =============================================================================

// linerReader implements commands.Reader with liner prompts. Abort is only
// noticed between prompts.
type linerReader struct {
	state  *liner.State
	writer commands.Writer
	mu     sync.Mutex
}

var _ commands.Reader = (*linerReader)(nil)

func (r *linerReader) prompt(ctx context.Context, fn func() (string, error)) (string, error) {
	if !r.mu.TryLock() {
		return "", commands.ErrRequestActive
	}
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", commands.ErrCanceled
	}
	text, err := fn()
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", commands.ErrCanceled
	}
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", commands.ErrCanceled
	}
	return text, nil
}

func (r *linerReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	return r.prompt(ctx, func() (string, error) { return r.state.Prompt(prompt) })
}

func (r *linerReader) ReadPassword(ctx context.Context, prompt string) (string, error) {
	return r.prompt(ctx, func() (string, error) { return r.state.PasswordPrompt(prompt) })
}

func (r *linerReader) ReadConfirm(ctx context.Context, prompt string, def bool) (bool, error) {
	hint := " [y/N] "
	if def {
		hint = " [Y/n] "
	}
	for {
		answer, err := r.ReadLine(ctx, strings.TrimRight(prompt, " ")+hint)
		if err != nil {
			return false, err
		}
		if yes, ok := parseConfirm(answer, def); ok {
			return yes, nil
		}
		r.writer.WriteWarning("please answer y or n")
	}
}

func (r *linerReader) ReadSelect(ctx context.Context, prompt string, options []string, onChange func(int)) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("select %q: no options", prompt)
	}
	r.writer.WriteInfo(prompt)
	for i, opt := range options {
		r.writer.WriteLine(fmt.Sprintf("  %2d) %s", i+1, util.TruncateWidth(opt, 100)))
	}
	for {
		answer, err := r.ReadLine(ctx, fmt.Sprintf("choice [1-%d]: ", len(options)))
		if err != nil {
			return -1, err
		}
		if idx, ok := parseSelect(answer, options); ok {
			if onChange != nil {
				onChange(idx)
			}
			return idx, nil
		}
		r.writer.WriteWarning("no such option")
	}
}

// parseConfirm reads a yes/no answer. An empty answer is def.
func parseConfirm(answer string, def bool) (yes, ok bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

// parseSelect accepts a 1-based number or an option's exact text.
func parseSelect(answer string, options []string) (int, bool) {
	answer = strings.TrimSpace(answer)
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return n - 1, true
	}
	for i, opt := range options {
		if strings.EqualFold(opt, answer) {
			return i, true
		}
	}
	return -1, false
}
