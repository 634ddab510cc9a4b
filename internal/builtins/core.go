// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/pipeline"
	"github.com/jeranaias/termshell/internal/util"
)

// =============================================================================
// HELP
// =============================================================================

func helpProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "help",
		Aliases:     []string{"?"},
		Description: "List commands or describe one",
		Usage:       "help [command...]",
		Category:    CategoryCore,
		Parameters: []commands.Parameter{
			{Name: "command", Type: commands.ParamArray, Positional: true, Description: "Command path to describe"},
		},
		Handler: runHelp,
	})
}

func runHelp(_ context.Context, ec *commands.ExecutionContext) error {
	reg, err := service[*commands.Registry](ec, commands.ServiceRegistry)
	if err != nil {
		return err
	}

	words := ec.Args.Strings("command")
	if len(words) == 0 {
		ec.Writer.WriteObjects(helpRows(reg), "command", "aliases", "category", "description")
		return nil
	}

	proc, chain, rest := reg.Resolve(words)
	if proc == nil || proc.Hidden || len(rest) > 0 {
		name := strings.Join(words, " ")
		msg := fmt.Sprintf("no help for %q", name)
		if proc == nil {
			if s := pipeline.Suggest(words[0], reg.Names()); s != "" {
				msg += fmt.Sprintf(", did you mean %q?", s)
			}
		}
		return commands.Exit(commands.ExitNotFound, fmt.Errorf("%s", msg))
	}

	ec.Writer.WriteMarkdown(describe(strings.Join(chain, " "), proc))
	return nil
}

// helpRows lists visible processors grouped by category, then by name.
func helpRows(reg *commands.Registry) []map[string]any {
	byCategory := reg.ByCategory()
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var rows []map[string]any
	for _, c := range categories {
		for _, p := range byCategory[c] {
			rows = append(rows, map[string]any{
				"command":     p.Command,
				"aliases":     strings.Join(p.Aliases, ", "),
				"category":    c,
				"description": p.Description,
			})
		}
	}
	return rows
}

// describe renders the markdown help of one processor.
func describe(name string, p *commands.Processor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	if p.Description != "" {
		b.WriteString(p.Description + "\n\n")
	}
	if p.Usage != "" {
		fmt.Fprintf(&b, "**Usage:** `%s`\n\n", p.Usage)
	}
	if len(p.Aliases) > 0 {
		fmt.Fprintf(&b, "**Aliases:** %s\n\n", strings.Join(p.Aliases, ", "))
	}

	if len(p.Parameters) > 0 {
		b.WriteString("## Parameters\n\n")
		b.WriteString("| Name | Type | Required | Description |\n")
		b.WriteString("|------|------|----------|-------------|\n")
		for _, param := range p.Parameters {
			flag := "--" + param.Name
			for _, alias := range param.Aliases {
				flag += ", -" + alias
			}
			required := ""
			if param.Required {
				required = "yes"
			}
			desc := param.Description
			if param.Default != nil {
				desc += fmt.Sprintf(" (default: %v)", param.Default)
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", flag, param.Type, required, desc)
		}
		b.WriteString("\n")
	}

	var children []*commands.Processor
	for _, child := range p.Children() {
		if !child.Hidden {
			children = append(children, child)
		}
	}
	if len(children) > 0 {
		b.WriteString("## Subcommands\n\n")
		for _, child := range children {
			fmt.Fprintf(&b, "- `%s %s` %s\n", name, child.Command, child.Description)
		}
		b.WriteString("\n")
	}

	if p.Describe != nil {
		b.WriteString(p.Describe())
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// HISTORY
// =============================================================================

func historyProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "history",
		Description: "Show or clear the command history",
		Usage:       "history [--clear] [--limit n]",
		Category:    CategoryCore,
		Parameters: []commands.Parameter{
			{Name: "clear", Type: commands.ParamBoolean, Description: "Forget every entry"},
			{Name: "limit", Aliases: []string{"n"}, Type: commands.ParamNumber, Default: int64(0), Description: "Show only the last n entries"},
		},
		Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
			h, err := service[History](ec, commands.ServiceHistory)
			if err != nil {
				return err
			}
			if ec.Args.Bool("clear") {
				h.Clear()
				ec.Writer.WriteSuccess("history cleared")
				return nil
			}

			entries := h.Entries()
			start := 0
			if n := int(ec.Args.Int("limit", 0)); n > 0 && n < len(entries) {
				start = len(entries) - n
			}
			for i := start; i < len(entries); i++ {
				ec.Writer.WriteLine(fmt.Sprintf("%5d  %s", i+1, util.TruncateWidth(entries[i], 120)))
			}
			return nil
		},
	})
}

// =============================================================================
// CLEAR / EXIT
// =============================================================================

func clearProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "clear",
		Aliases:     []string{"cls"},
		Description: "Clear the screen",
		Category:    CategoryCore,
		Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
			ec.Writer.Clear()
			return nil
		},
	})
}

func exitProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "exit",
		Aliases:     []string{"quit", "q"},
		Description: "End the session",
		Usage:       "exit [code]",
		Category:    CategoryCore,
		Parameters: []commands.Parameter{
			{Name: "code", Type: commands.ParamNumber, Positional: true, Default: int64(0), Description: "Exit status"},
		},
		Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
			s, err := service[Session](ec, commands.ServiceSession)
			if err != nil {
				return err
			}
			s.Exit(int(ec.Args.Int("code", 0)))
			return nil
		},
	})
}
