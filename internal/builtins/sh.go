// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/util"
)

// shProcessor can be replaced or extended by plugins, so it is not sealed.
func shProcessor() *commands.Processor {
	return &commands.Processor{
		Command:     "sh",
		Description: "Run a POSIX shell snippet in-process",
		Usage:       `sh "<script>" [--dir <path>]`,
		Category:    CategorySystem,
		Parameters: []commands.Parameter{
			{Name: "script", Type: commands.ParamArray, Positional: true, Required: true, Description: "Script text"},
			{Name: "dir", Aliases: []string{"C"}, Type: commands.ParamPath, Description: "Working directory"},
		},
		Metadata: commands.Metadata{Module: Module},
		Handler:  runSh,
	}
}

func runSh(ctx context.Context, ec *commands.ExecutionContext) error {
	script := strings.Join(ec.Args.Strings("script"), " ")

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "sh")
	if err != nil {
		return commands.Exit(commands.ExitUsage, fmt.Errorf("parse script: %w", err))
	}

	var stdout, stderr bytes.Buffer
	opts := []interp.RunnerOption{
		interp.StdIO(strings.NewReader(ec.InputText()), &stdout, &stderr),
		interp.Env(expand.ListEnviron(os.Environ()...)),
	}
	if dir := ec.Args.String("dir", ""); dir != "" {
		opts = append(opts, interp.Dir(util.ExpandHome(dir)))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("create interpreter: %w", err)
	}

	runErr := runner.Run(ctx, prog)

	if stdout.Len() > 0 {
		ec.Writer.Write(stdout.String())
	}
	for _, line := range util.Lines(stderr.String()) {
		ec.Writer.WriteError(line)
	}

	if runErr != nil {
		if status, ok := interp.IsExitStatus(runErr); ok {
			return commands.Exit(int(status), nil)
		}
		return runErr
	}
	return nil
}
