// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"errors"
	"strings"

	"github.com/jeranaias/termshell/internal/commands"
)

func askProcessor() *commands.Processor {
	promptParam := func(def string) commands.Parameter {
		return commands.Parameter{Name: "prompt", Aliases: []string{"p"}, Default: def, Description: "Prompt text"}
	}

	return sealed(&commands.Processor{
		Command:     "ask",
		Description: "Prompt for input; the answer becomes output",
		Usage:       "ask line|password|confirm|select",
		Category:    CategoryInteractive,
		Processors: []*commands.Processor{
			{
				Command:     "line",
				Description: "Read a line of text",
				Usage:       "ask line [prompt...]",
				Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
					reader, err := requireReader(ec)
					if err != nil {
						return err
					}
					answer, err := reader.ReadLine(ctx, promptText(ec, "> "))
					if err != nil {
						return err
					}
					ec.Writer.WriteLine(answer)
					return nil
				},
			},
			{
				Command:     "password",
				Aliases:     []string{"secret"},
				Description: "Read a masked value",
				Usage:       "ask password [prompt...]",
				Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
					reader, err := requireReader(ec)
					if err != nil {
						return err
					}
					answer, err := reader.ReadPassword(ctx, promptText(ec, "Password: "))
					if err != nil {
						return err
					}
					// Never echoed; only a pipe sees it.
					ec.Output(answer)
					return nil
				},
			},
			{
				Command:     "confirm",
				Description: "Ask a yes/no question",
				Usage:       "ask confirm [--default] [prompt...]",
				Parameters: []commands.Parameter{
					{Name: "default", Aliases: []string{"y"}, Type: commands.ParamBoolean, Description: "Answer when Enter is pressed"},
				},
				Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
					reader, err := requireReader(ec)
					if err != nil {
						return err
					}
					ok, err := reader.ReadConfirm(ctx, promptText(ec, "Continue?"), ec.Args.Bool("default"))
					if err != nil {
						return err
					}
					ec.Output(ok)
					if ok {
						ec.Writer.WriteLine("yes")
						return nil
					}
					ec.Writer.WriteLine("no")
					return commands.Exit(commands.ExitFailure, nil)
				},
			},
			{
				Command:     "select",
				Aliases:     []string{"choose"},
				Description: "Pick one of several options",
				Usage:       "ask select [--prompt <text>] <options...>",
				Parameters: []commands.Parameter{
					promptParam("Choose:"),
					{Name: "options", Type: commands.ParamArray, Positional: true, Description: "Options; piped lines when absent"},
				},
				Handler: runAskSelect,
			},
		},
	})
}

func runAskSelect(ctx context.Context, ec *commands.ExecutionContext) error {
	reader, err := requireReader(ec)
	if err != nil {
		return err
	}

	options := ec.Args.Strings("options")
	if len(options) == 0 && ec.HasInput {
		for _, line := range strings.Split(ec.InputText(), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				options = append(options, line)
			}
		}
	}
	if len(options) == 0 {
		return commands.Exit(commands.ExitUsage, errors.New("no options to choose from"))
	}

	idx, err := reader.ReadSelect(ctx, ec.Args.String("prompt", "Choose:"), options, nil)
	if err != nil {
		return err
	}
	ec.Writer.WriteLine(options[idx])
	return nil
}

// promptText joins the positional words, or returns def.
func promptText(ec *commands.ExecutionContext, def string) string {
	if len(ec.Positional) == 0 {
		return def
	}
	p := strings.Join(ec.Positional, " ")
	if !strings.HasSuffix(p, " ") {
		p += " "
	}
	return p
}
