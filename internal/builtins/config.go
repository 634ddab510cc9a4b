// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/config"
)

func configProcessor() *commands.Processor {
	keyParam := commands.Parameter{
		Name:        "key",
		Positional:  true,
		Required:    true,
		Description: "Dotted key (e.g. ui.theme)",
		Values:      config.GetAllKeys,
	}

	return sealed(&commands.Processor{
		Command:     "config",
		Description: "Inspect and change settings",
		Usage:       "config get|set|keys|save",
		Category:    CategoryData,
		Processors: []*commands.Processor{
			{
				Command:     "get",
				Description: "Print a setting",
				Usage:       "config get <key>",
				Parameters:  []commands.Parameter{keyParam},
				Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
					settings, err := service[Settings](ec, commands.ServiceConfig)
					if err != nil {
						return err
					}
					v, err := settings.Current().Get(ec.Args.String("key", ""))
					if err != nil {
						return commands.Exit(commands.ExitUsage, err)
					}
					if list, ok := v.([]string); ok {
						ec.Writer.WriteJSON(list)
						return nil
					}
					ec.Writer.WriteLine(fmt.Sprint(v))
					return nil
				},
			},
			{
				Command:     "set",
				Description: "Change a setting for this session",
				Usage:       "config set <key> <value...>",
				Parameters: []commands.Parameter{
					keyParam,
					{Name: "value", Type: commands.ParamArray, Positional: true, Required: true, Description: "New value"},
				},
				Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
					settings, err := service[Settings](ec, commands.ServiceConfig)
					if err != nil {
						return err
					}
					key := ec.Args.String("key", "")
					value := strings.Join(ec.Args.Strings("value"), " ")

					cfg := settings.Current()
					if err := cfg.Set(key, value); err != nil {
						return commands.Exit(commands.ExitUsage, err)
					}
					if err := settings.Apply(cfg); err != nil {
						return commands.Exit(commands.ExitUsage, err)
					}
					ec.Writer.WriteSuccess(fmt.Sprintf("%s = %s", key, value))
					return nil
				},
			},
			{
				Command:     "keys",
				Description: "List every setting with its value",
				Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
					settings, err := service[Settings](ec, commands.ServiceConfig)
					if err != nil {
						return err
					}
					cfg := settings.Current()
					var rows []map[string]any
					for _, key := range config.GetAllKeys() {
						v, _ := cfg.Get(key)
						if list, ok := v.([]string); ok {
							v = strings.Join(list, ",")
						}
						rows = append(rows, map[string]any{"key": key, "value": v})
					}
					ec.Writer.WriteObjects(rows, "key", "value")
					return nil
				},
			},
			{
				Command:     "save",
				Description: "Write the active settings to the config file",
				Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
					settings, err := service[Settings](ec, commands.ServiceConfig)
					if err != nil {
						return err
					}
					path := settings.Path()
					if err := config.Save(settings.Current(), path); err != nil {
						return err
					}
					ec.Writer.WriteSuccess("saved " + path)
					return nil
				},
			},
		},
	})
}
