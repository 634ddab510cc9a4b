// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the shell's structured logger.
//
// The interactive frontend owns the terminal in raw mode, so log output
// goes to a file and never to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options selects the level and destination.
type Options struct {
	// Level is "debug", "info", "warn", "error" or "off"
	Level string

	// File receives the log; empty discards it
	File string

	// Debug forces the debug level
	Debug bool
}

// Discard returns a logger that writes nothing.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// New creates a logger per opts. The returned close function releases the
// log file and is never nil.
func New(opts Options) (*log.Logger, func() error, error) {
	noop := func() error { return nil }

	level := strings.ToLower(strings.TrimSpace(opts.Level))
	if opts.Debug {
		level = "debug"
	}
	if level == "off" || opts.File == "" {
		return Discard(), noop, nil
	}
	if level == "" {
		level = "info"
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, noop, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
		return nil, noop, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		Prefix:          "termshell",
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	})
	return logger, f.Close, nil
}
