// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// ExecutionContext is everything a handler sees for one command segment.
type ExecutionContext struct {
	// ID uniquely identifies this execution in logs
	ID string

	// Name is the resolved processor chain joined by spaces
	Name string

	// Raw is the segment text as typed
	Raw string

	// Chain is the words that resolved to the processor
	Chain []string

	// Args holds bound parameters and pass-through flags
	Args BoundArgs

	// Positional is the bare words after the chain
	Positional []string

	// Processor is the processor being run
	Processor *Processor

	// Input is the previous segment's output when piped
	Input    any
	HasInput bool

	Writer   Writer
	Reader   Reader
	Services *Services
	Logger   *log.Logger

	ctx       context.Context
	output    any
	hasOutput bool
}

// NewExecutionContext creates a context bound to ctx for abort notification.
func NewExecutionContext(ctx context.Context) *ExecutionContext {
	return &ExecutionContext{ctx: ctx, Args: BoundArgs{}}
}

// Output sets the value passed to the next piped command, overriding
// anything captured from the writer.
func (ec *ExecutionContext) Output(v any) {
	ec.output = v
	ec.hasOutput = true
}

// Result returns the value set with Output.
func (ec *ExecutionContext) Result() (any, bool) {
	return ec.output, ec.hasOutput
}

// OnAbort registers fn to run once if the command is aborted. The returned
// function deregisters it and reports whether it was still pending.
func (ec *ExecutionContext) OnAbort(fn func()) (stop func() bool) {
	if ec.ctx == nil {
		return func() bool { return false }
	}
	return context.AfterFunc(ec.ctx, fn)
}

// Aborted reports whether the command has been aborted.
func (ec *ExecutionContext) Aborted() bool {
	return ec.ctx != nil && ec.ctx.Err() != nil
}

// InputText renders piped input as text. Strings pass through; other
// values are encoded as indented JSON.
func (ec *ExecutionContext) InputText() string {
	if !ec.HasInput {
		return ""
	}
	return Stringify(ec.Input)
}

// Text returns piped input if present, otherwise the positional words
// joined by spaces.
func (ec *ExecutionContext) Text() string {
	if ec.HasInput {
		return ec.InputText()
	}
	return strings.Join(ec.Positional, " ")
}

// Arg returns the i-th positional word, or def.
func (ec *ExecutionContext) Arg(i int, def string) string {
	if i < len(ec.Positional) {
		return ec.Positional[i]
	}
	return def
}

// Stringify renders a pipeline value as text.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case []byte:
		return string(val)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
