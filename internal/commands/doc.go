// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands defines processors, argument binding, and the registry
// that resolves command words to processors.
//
// # Key Types
//
//   - Processor: A named command with parameters and sub-processors
//   - Registry: The forest of top-level processors
//   - BoundArgs: Parameter values keyed by name and alias
//   - ExecutionContext: What a handler sees while running
//   - Writer, Reader: Output and interactive input surfaces
//
// # Usage
//
// Register a processor and resolve a line:
//
//	reg := commands.NewRegistry()
//	reg.MustRegister(&commands.Processor{
//	    Command: "greet",
//	    Parameters: []commands.Parameter{{Name: "name", Aliases: []string{"n"}}},
//	    Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
//	        ec.Writer.WriteLine("hello " + ec.Args.String("name", "world"))
//	        return nil
//	    },
//	})
//
//	seg := parser.ParseSegment("greet -n ada")
//	proc, chain, _ := reg.Resolve(seg.Words)
//	args, _ := commands.Bind(seg, proc.Parameters, len(chain))
package commands
