// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"slices"
	"strings"

	"github.com/jeranaias/termshell/internal/commands"
)

// =============================================================================
// COMMAND PROVIDER
// =============================================================================

// CommandProvider completes processor names, then sub-processor names along
// the resolved chain.
type CommandProvider struct {
	Registry *commands.Registry
}

// Priority implements Provider.
func (CommandProvider) Priority() int { return 0 }

// Complete implements Provider.
func (c CommandProvider) Complete(ctx Context) []string {
	if ctx.IsFlag() {
		return nil
	}

	words := ctx.Words()
	if len(words) == 0 {
		return filterPrefix(c.Registry.Names(), ctx.Token)
	}

	p, consumed := c.Registry.FindProcessor(words[0], words[1:])
	if p == nil || consumed != len(words)-1 {
		return nil
	}

	var names []string
	for _, child := range p.Children() {
		if child.Hidden {
			continue
		}
		names = append(names, child.Names()...)
	}
	return filterPrefix(names, ctx.Token)
}

// =============================================================================
// PARAMETER PROVIDER
// =============================================================================

// ParameterProvider completes --name and -alias flags of the resolved
// processor. Flags already given are skipped unless they are arrays.
type ParameterProvider struct {
	Registry *commands.Registry
}

// Priority implements Provider.
func (ParameterProvider) Priority() int { return 100 }

// Complete implements Provider.
func (c ParameterProvider) Complete(ctx Context) []string {
	if !ctx.IsFlag() {
		return nil
	}
	p := resolve(c.Registry, ctx)
	if p == nil {
		return nil
	}

	var flags []string
	for _, param := range p.Parameters {
		if param.Type != commands.ParamArray && given(ctx.Tokens, param) {
			continue
		}
		flags = append(flags, "--"+param.Name)
		for _, alias := range param.Aliases {
			if len([]rune(alias)) == 1 {
				flags = append(flags, "-"+alias)
			} else {
				flags = append(flags, "--"+alias)
			}
		}
	}
	return filterPrefix(flags, ctx.Token)
}

func given(tokens []string, param commands.Parameter) bool {
	names := append([]string{param.Name}, param.Aliases...)
	for _, tok := range tokens {
		if len(tok) < 2 || tok[0] != '-' {
			continue
		}
		name := tok[1:]
		if name[0] == '-' {
			name = name[1:]
		}
		for i := 0; i < len(name); i++ {
			if name[i] == '=' {
				name = name[:i]
				break
			}
		}
		if slices.Contains(names, name) {
			return true
		}
	}
	return false
}

// =============================================================================
// VALUE PROVIDER
// =============================================================================

// ValueProvider completes argument values from Parameter.Values: the value
// of a flag just typed, or the positional parameter at the token's place.
type ValueProvider struct {
	Registry *commands.Registry
}

// Priority implements Provider.
func (ValueProvider) Priority() int { return 25 }

// Complete implements Provider.
func (c ValueProvider) Complete(ctx Context) []string {
	if ctx.IsFlag() {
		return nil
	}
	words := ctx.Words()
	if len(words) == 0 {
		return nil
	}
	p, consumed := c.Registry.FindProcessor(words[0], words[1:])
	if p == nil {
		return nil
	}

	if n := len(ctx.Tokens); n > 0 {
		if name, ok := flagName(ctx.Tokens[n-1]); ok {
			param, found := p.Parameter(name)
			if found && param.Type != commands.ParamBoolean {
				return values(param, ctx.Token)
			}
		}
	}

	index := len(words) - 1 - consumed
	for _, param := range p.Parameters {
		if !param.Positional {
			continue
		}
		if index == 0 || param.Type == commands.ParamArray {
			return values(param, ctx.Token)
		}
		index--
	}
	return nil
}

func values(param commands.Parameter, prefix string) []string {
	if param.Values == nil {
		return nil
	}
	return filterPrefix(param.Values(), prefix)
}

// flagName returns the name of a bare flag token such as "--as" or "-f".
// Flags carrying an inline value do not count.
func flagName(tok string) (string, bool) {
	if len(tok) < 2 || tok[0] != '-' || strings.Contains(tok, "=") {
		return "", false
	}
	name := strings.TrimPrefix(tok[1:], "-")
	return name, name != ""
}

// resolve finds the processor named by the words before the token.
func resolve(reg *commands.Registry, ctx Context) *commands.Processor {
	words := ctx.Words()
	if len(words) == 0 {
		return nil
	}
	p, _ := reg.FindProcessor(words[0], words[1:])
	return p
}
