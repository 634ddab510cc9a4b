// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitFailure indicates the handler failed
	ExitFailure = 1
	// ExitUsage indicates invalid usage or a failed argument validation
	ExitUsage = 2
	// ExitNotFound indicates no processor matched the command
	ExitNotFound = 127
	// ExitCanceled indicates the command was aborted
	ExitCanceled = 130
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrSealed is returned when replacing a sealed processor without extending it.
	ErrSealed = errors.New("processor is sealed")

	// ErrCanceled is returned by Reader calls the user canceled with Escape or Ctrl+C.
	ErrCanceled = errors.New("input canceled")

	// ErrRequestActive is returned when a Reader call starts while another is pending.
	ErrRequestActive = errors.New("an input request is already active")

	// ErrNoOriginal is returned by CallOriginal when there is nothing to delegate to.
	ErrNoOriginal = errors.New("processor has no original to call")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a handler failure with an explicit exit code.
type CommandError struct {
	Command string
	Code    int
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	}
	if e.Command == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Exit returns an error that makes the command finish with code.
// A nil err exits silently.
func Exit(code int, err error) error {
	return &CommandError{Code: code, Err: err}
}

// ExitCode extracts the exit code carried by err.
// It returns ExitSuccess for nil and ExitFailure for untyped errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ExitUsage
	}
	if errors.Is(err, ErrCanceled) {
		return ExitCanceled
	}
	return ExitFailure
}

// ValidationError represents an argument validation error.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
	Err      error
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
