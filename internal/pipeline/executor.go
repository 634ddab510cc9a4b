// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/parser"
)

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor runs command lines against a registry.
type Executor struct {
	registry *commands.Registry
	services *commands.Services
	reader   commands.Reader
	appender Appender
	logger   *log.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithServices sets the services handed to every command.
func WithServices(s *commands.Services) Option {
	return func(e *Executor) { e.services = s }
}

// WithReader sets the reader handed to every command.
func WithReader(r commands.Reader) Option {
	return func(e *Executor) { e.reader = r }
}

// WithAppender sets the target of >>.
func WithAppender(a Appender) Option {
	return func(e *Executor) { e.appender = a }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New creates an executor for registry.
func New(registry *commands.Registry, opts ...Option) *Executor {
	e := &Executor{
		registry: registry,
		services: commands.NewServices(),
		appender: FileAppender{},
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result summarizes one executed line.
type Result struct {
	// ExitCode is the code of the last segment that ran
	ExitCode int

	// Output is the last segment's captured output
	Output    any
	HasOutput bool

	// Ran and Skipped count segments
	Ran     int
	Skipped int
}

// =============================================================================
// LINE EXECUTION
// =============================================================================

// Execute runs line and writes to w. It never returns an error; failures
// are reported on w and reflected in the exit code.
func (e *Executor) Execute(ctx context.Context, line string, w commands.Writer) Result {
	parts := parser.SplitByOperators(line)

	var (
		res      Result
		op       = parser.PartCommand
		prevRan  = true
		piped    any
		hasPiped bool
	)

	for _, part := range parts {
		if part.Kind != parser.PartCommand {
			op = part.Kind
			continue
		}

		if ctx.Err() != nil {
			res.ExitCode = commands.ExitCanceled
			break
		}

		run := true
		switch op {
		case parser.PartAnd:
			run = res.ExitCode == commands.ExitSuccess
		case parser.PartOr:
			run = res.ExitCode != commands.ExitSuccess
		case parser.PartPipe, parser.PartAppend:
			run = prevRan
		}

		if !run {
			res.Skipped++
			prevRan = false
			piped, hasPiped = nil, false
			op = parser.PartCommand
			continue
		}

		var out segmentResult
		if op == parser.PartAppend {
			out = e.append(ctx, part.Text, piped, hasPiped, w)
		} else {
			in, hasIn := piped, hasPiped && op == parser.PartPipe
			out = e.runSegment(ctx, part.Text, in, hasIn, w)
		}

		res.Ran++
		res.ExitCode = out.code
		piped, hasPiped = out.output, out.hasOutput
		prevRan = true
		op = parser.PartCommand

		if out.code == commands.ExitCanceled {
			break
		}
	}

	res.Output, res.HasOutput = piped, hasPiped
	return res
}

type segmentResult struct {
	code      int
	output    any
	hasOutput bool
}

// runSegment resolves, binds and runs one command.
func (e *Executor) runSegment(ctx context.Context, text string, input any, hasInput bool, w commands.Writer) segmentResult {
	start := time.Now()
	parsed := parser.ParseSegment(text)

	// A segment of only flags names no command.
	if len(parsed.Words) == 0 {
		w.WriteError(fmt.Sprintf("unknown command: %s", strings.TrimSpace(text)))
		e.logger.Debug("unknown command", "command", text)
		return segmentResult{code: commands.ExitNotFound}
	}

	proc, chain, _ := e.registry.Resolve(parsed.Words)
	if proc == nil {
		name := parsed.Words[0]
		w.WriteError(fmt.Sprintf("unknown command: %s", name))
		if s := Suggest(name, e.registry.Names()); s != "" {
			w.WriteInfo(fmt.Sprintf("did you mean %q?", s))
		}
		e.logger.Debug("unknown command", "command", name)
		return segmentResult{code: commands.ExitNotFound}
	}

	name := strings.Join(chain, " ")
	if proc.Handler == nil {
		w.WriteError(missingSubcommand(name, proc))
		return segmentResult{code: commands.ExitUsage}
	}

	args, positional := commands.Bind(parsed, proc.Parameters, len(chain))
	if err := commands.Validate(name, args, proc.Parameters); err != nil {
		w.WriteError(err.Error())
		if proc.Usage != "" {
			w.WriteInfo("usage: " + proc.Usage)
		}
		return segmentResult{code: commands.ExitUsage}
	}

	capture := NewCaptureWriter(w)
	ec := commands.NewExecutionContext(ctx)
	ec.ID = uuid.New().String()
	ec.Name = name
	ec.Raw = text
	ec.Chain = chain
	ec.Args = args
	ec.Positional = positional
	ec.Processor = proc
	ec.Input, ec.HasInput = input, hasInput
	ec.Writer = capture
	ec.Reader = e.reader
	ec.Services = e.services
	ec.Logger = e.logger.With("command", name, "id", ec.ID)

	err := invoke(ctx, proc, ec)
	code := e.report(ctx, name, err, w)

	e.logger.Debug("segment finished",
		"id", ec.ID,
		"command", name,
		"exit", code,
		"duration", time.Since(start),
	)

	out := segmentResult{code: code}
	if v, ok := ec.Result(); ok {
		out.output, out.hasOutput = v, true
	} else {
		out.output, out.hasOutput = capture.Output()
	}
	return out
}

// invoke runs the handler, turning a panic into an error.
func invoke(ctx context.Context, proc *commands.Processor, ec *commands.ExecutionContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return proc.Handler(ctx, ec)
}

// report writes a diagnostic for err and returns the exit code.
func (e *Executor) report(ctx context.Context, name string, err error, w commands.Writer) int {
	if ctx.Err() != nil && (err == nil || errors.Is(err, ctx.Err()) || errors.Is(err, commands.ErrCanceled)) {
		w.WriteWarning(name + ": interrupted")
		return commands.ExitCanceled
	}
	if err == nil {
		return commands.ExitSuccess
	}

	code := commands.ExitCode(err)
	var ce *commands.CommandError
	if errors.As(err, &ce) && ce.Err == nil {
		return code
	}
	if errors.Is(err, commands.ErrCanceled) {
		w.WriteWarning(name + ": canceled")
		return code
	}

	w.WriteError(fmt.Sprintf("%s: %v", name, err))
	e.logger.Warn("command failed", "command", name, "err", err)
	return code
}

// append writes the piped value to the target named by text.
func (e *Executor) append(ctx context.Context, text string, value any, has bool, w commands.Writer) segmentResult {
	words := parser.Tokenize(text)
	if len(words) == 0 || words[0] == "" {
		w.WriteError("missing append target")
		return segmentResult{code: commands.ExitUsage}
	}
	target := words[0]

	data := ""
	if has {
		data = commands.Stringify(value)
	}
	if err := e.appender.Append(ctx, target, data); err != nil {
		w.WriteError(err.Error())
		return segmentResult{code: commands.ExitFailure}
	}
	e.logger.Debug("appended output", "target", target, "bytes", len(data))
	return segmentResult{code: commands.ExitSuccess}
}

func missingSubcommand(name string, p *commands.Processor) string {
	var names []string
	for _, child := range p.Children() {
		if !child.Hidden {
			names = append(names, child.Command)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("%s: nothing to run", name)
	}
	return fmt.Sprintf("%s: missing subcommand, expected one of: %s", name, strings.Join(names, ", "))
}
