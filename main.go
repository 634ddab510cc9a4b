// termshell - an embeddable command shell for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/termshell/internal/shell"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	debug      bool
	lineEditor string
	command    string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "termshell",
		Short: "An interactive command shell with completion and pipelines",
		Long: `termshell runs an interactive command line with tab completion,
history, pipelines (|, >, >>) and conditional chaining (&&, ||).

Examples:
  termshell                       Start an interactive session
  termshell -c 'echo hi | upper'  Run one line and exit
  termshell --line-editor liner   Use the liner line editor`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default is $HOME/.termshell/config.toml)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&lineEditor, "line-editor", "", "line editor: raw or liner")
	cmd.Flags().StringVarP(&command, "command", "c", "", "run one command line and exit")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command) (int, error) {
	sh, err := shell.New(ctx, shell.Options{
		ConfigPath: configPath,
		Debug:      debug,
		LineEditor: lineEditor,
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
	})
	if err != nil {
		return 1, err
	}
	defer sh.Close()

	if cmd.Flags().Changed("command") {
		return sh.RunLine(ctx, command)
	}
	return sh.Run(ctx)
}

func main() {
	code := 0
	root := newRootCmd()
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		var err error
		code, err = run(cmd.Context(), cmd)
		return err
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "termshell: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}
