// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"errors"
	"fmt"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/config"
	"github.com/jeranaias/termshell/internal/storage"
	"github.com/jeranaias/termshell/internal/terminal"
)

// Module is the Metadata.Module of every built-in processor.
const Module = "builtins"

// Help categories.
const (
	CategoryCore        = "core"
	CategoryText        = "text"
	CategoryData        = "data"
	CategoryUI          = "ui"
	CategorySecurity    = "security"
	CategorySystem      = "system"
	CategoryInteractive = "interactive"
)

// =============================================================================
// SERVICES
// =============================================================================

// Session ends the interactive session.
type Session interface {
	Exit(code int)
}

// ThemeHost owns the active theme. *terminal.Writer implements it.
type ThemeHost interface {
	Theme() terminal.Theme
	SetTheme(t terminal.Theme)
}

// History is the command history. *input.History implements it.
type History interface {
	Entries() []string
	Clear()
}

// Settings gives access to the live configuration.
type Settings interface {
	// Current returns a copy of the active configuration
	Current() *config.Config

	// Apply validates cfg and makes it active
	Apply(cfg *config.Config) error

	// Path is where Save writes
	Path() string
}

// ErrNoService is returned when a processor's service is not registered.
var ErrNoService = errors.New("service not available")

func service[T any](ec *commands.ExecutionContext, name string) (T, error) {
	svc, ok := commands.Service[T](ec.Services, name)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNoService, name)
	}
	return svc, nil
}

func storeOf(ec *commands.ExecutionContext) (*storage.Store, error) {
	return service[*storage.Store](ec, commands.ServiceStore)
}

// =============================================================================
// REGISTRATION
// =============================================================================

// Processors returns fresh copies of every built-in processor.
func Processors() []*commands.Processor {
	return []*commands.Processor{
		helpProcessor(),
		historyProcessor(),
		clearProcessor(),
		exitProcessor(),
		echoProcessor(),
		upperProcessor(),
		lowerProcessor(),
		countProcessor(),
		grepProcessor(),
		formatProcessor(),
		themeProcessor(),
		storeProcessor(),
		configProcessor(),
		hashProcessor(),
		totpProcessor(),
		shProcessor(),
		diffProcessor(),
		cpProcessor(),
		sleepProcessor(),
		askProcessor(),
	}
}

// Register adds every built-in processor to reg.
func Register(reg *commands.Registry) error {
	for _, p := range Processors() {
		if err := reg.Register(p); err != nil {
			return fmt.Errorf("register %s: %w", p.Command, err)
		}
	}
	return nil
}

// sealed marks p as a sealed built-in.
func sealed(p *commands.Processor) *commands.Processor {
	p.Metadata = commands.Metadata{Sealed: true, Module: Module}
	return p
}

// requireReader returns the interactive reader or an error.
func requireReader(ec *commands.ExecutionContext) (commands.Reader, error) {
	if ec.Reader == nil {
		return nil, errors.New("no interactive input available")
	}
	return ec.Reader, nil
}
