// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"

	"github.com/charmbracelet/log"
)

// =============================================================================
// PROCESSOR DEFINITION
// =============================================================================

// Processor is a named command, possibly with nested sub-processors.
type Processor struct {
	// Command is the primary name (e.g., "theme")
	Command string

	// Aliases are alternative names (e.g., "q" for "quit")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "cp <src> <dest>")
	Usage string

	// Category for grouping in help display
	Category string

	// Hidden processors don't appear in help or completion
	Hidden bool

	// Parameters declares the flags and positional arguments
	Parameters []Parameter

	// Processors are the sub-processors, matched by the next word
	Processors []*Processor

	// Metadata controls registration behavior
	Metadata Metadata

	// Handler runs the command. A nil handler makes the node a pure group.
	Handler Handler

	// Describe returns extended markdown help, if set
	Describe func() string

	// Initialize is called once when the processor joins a registry with an
	// environment attached
	Initialize func(env *Environment) error

	// Original is the processor this one extends. Set by Registry.Register.
	Original *Processor
}

// Handler executes a processor.
type Handler func(ctx context.Context, ec *ExecutionContext) error

// Metadata controls how a processor interacts with the registry.
type Metadata struct {
	// Sealed processors cannot be unregistered or replaced, only extended.
	Sealed bool

	// ExtendsProcessor layers this processor over an existing one of the same
	// name instead of replacing it.
	ExtendsProcessor bool

	// Module names the plugin that registered the processor.
	Module string
}

// Children returns the sub-processors. An extension without children of its
// own exposes the children of the processor it extends.
func (p *Processor) Children() []*Processor {
	if len(p.Processors) == 0 && p.Original != nil {
		return p.Original.Children()
	}
	return p.Processors
}

// Child finds a direct sub-processor by name or alias.
func (p *Processor) Child(name string) *Processor {
	key := normalizeName(name)
	for _, child := range p.Children() {
		if child.matches(key) {
			return child
		}
	}
	return nil
}

// Parameter returns the declared parameter with the given name or alias.
func (p *Processor) Parameter(name string) (Parameter, bool) {
	for _, param := range p.Parameters {
		if param.matches(name) {
			return param, true
		}
	}
	return Parameter{}, false
}

// Names returns the primary name followed by the aliases.
func (p *Processor) Names() []string {
	return append([]string{p.Command}, p.Aliases...)
}

// CallOriginal runs the handler of the processor this one extends.
func (p *Processor) CallOriginal(ctx context.Context, ec *ExecutionContext) error {
	orig := p.Original
	for orig != nil && orig.Handler == nil {
		orig = orig.Original
	}
	if orig == nil {
		return ErrNoOriginal
	}

	prev := ec.Processor
	ec.Processor = orig
	defer func() { ec.Processor = prev }()

	return orig.Handler(ctx, ec)
}

func (p *Processor) matches(key string) bool {
	if normalizeName(p.Command) == key {
		return true
	}
	for _, alias := range p.Aliases {
		if normalizeName(alias) == key {
			return true
		}
	}
	return false
}

// =============================================================================
// PARAMETERS
// =============================================================================

// ParamType determines binding and completion behavior.
type ParamType int

const (
	ParamString  ParamType = iota // Free-form string
	ParamNumber                   // Integer or float
	ParamBoolean                  // Flag; never consumes the next word
	ParamArray                    // Repeated flag accumulating values
	ParamPath                     // File path, completed from the filesystem
)

// String returns the type name used in help output.
func (t ParamType) String() string {
	switch t {
	case ParamNumber:
		return "number"
	case ParamBoolean:
		return "boolean"
	case ParamArray:
		return "array"
	case ParamPath:
		return "path"
	default:
		return "string"
	}
}

// Parameter describes a named argument.
type Parameter struct {
	// Name is the canonical name, given as --name
	Name string

	// Aliases are alternative names, given as -alias
	Aliases []string

	// Type determines coercion and completion
	Type ParamType

	// Positional parameters are also filled, in declaration order, from bare
	// words that follow the command
	Positional bool

	// Required parameters must be present before the handler runs
	Required bool

	// Default is bound when the parameter is absent
	Default any

	// Description explains the parameter
	Description string

	// Validator rejects bad values before the handler runs
	Validator func(v any) error

	// Values lists candidate values for tab completion
	Values func() []string
}

func (p Parameter) matches(name string) bool {
	if p.Name == name {
		return true
	}
	for _, alias := range p.Aliases {
		if alias == name {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Environment is the shared state handed to processor initializers.
type Environment struct {
	Writer   Writer
	Reader   Reader
	Services *Services
	Logger   *log.Logger
}
