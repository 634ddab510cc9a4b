// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/storage"
)

func storeProcessor() *commands.Processor {
	keyParam := commands.Parameter{Name: "key", Positional: true, Required: true, Description: "Key"}

	return sealed(&commands.Processor{
		Command:     "store",
		Aliases:     []string{"kv"},
		Description: "Read and write the persistent key-value store",
		Usage:       "store get|set|del|list",
		Category:    CategoryData,
		Processors: []*commands.Processor{
			{
				Command:     "get",
				Description: "Print the value of a key",
				Usage:       "store get <key>",
				Parameters:  []commands.Parameter{keyParam},
				Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
					store, err := storeOf(ec)
					if err != nil {
						return err
					}
					value, err := store.Get(ctx, ec.Args.String("key", ""))
					if errors.Is(err, storage.ErrNotFound) {
						return commands.Exit(commands.ExitFailure, err)
					}
					if err != nil {
						return err
					}
					ec.Writer.WriteLine(value)
					return nil
				},
			},
			{
				Command:     "set",
				Description: "Store a value",
				Usage:       "store set <key> <value...>",
				Parameters: []commands.Parameter{
					keyParam,
					{Name: "value", Type: commands.ParamArray, Positional: true, Description: "Value; piped input when absent"},
				},
				Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
					store, err := storeOf(ec)
					if err != nil {
						return err
					}
					key := ec.Args.String("key", "")
					value := strings.Join(ec.Args.Strings("value"), " ")
					if value == "" && ec.HasInput {
						value = ec.InputText()
					}
					if err := store.Set(ctx, key, value); err != nil {
						return err
					}
					ec.Writer.WriteSuccess("stored " + key)
					return nil
				},
			},
			{
				Command:     "del",
				Aliases:     []string{"rm", "delete"},
				Description: "Delete a key",
				Usage:       "store del <key>",
				Parameters:  []commands.Parameter{keyParam},
				Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
					store, err := storeOf(ec)
					if err != nil {
						return err
					}
					key := ec.Args.String("key", "")
					ok, err := store.Delete(ctx, key)
					if err != nil {
						return err
					}
					if !ok {
						return commands.Exit(commands.ExitFailure, fmt.Errorf("%w: %s", storage.ErrNotFound, key))
					}
					ec.Writer.WriteSuccess("deleted " + key)
					return nil
				},
			},
			{
				Command:     "list",
				Aliases:     []string{"ls"},
				Description: "List keys, optionally by prefix",
				Usage:       "store list [prefix]",
				Parameters: []commands.Parameter{
					{Name: "prefix", Positional: true, Default: "", Description: "Key prefix"},
				},
				Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
					store, err := storeOf(ec)
					if err != nil {
						return err
					}
					entries, err := store.List(ctx, ec.Args.String("prefix", ""))
					if err != nil {
						return err
					}
					rows := make([]map[string]any, 0, len(entries))
					for _, e := range entries {
						rows = append(rows, map[string]any{
							"key":     e.Key,
							"value":   e.Value,
							"updated": e.UpdatedAt.Format(time.DateTime),
						})
					}
					ec.Writer.WriteObjects(rows, "key", "value", "updated")
					return nil
				},
			},
		},
	})
}
