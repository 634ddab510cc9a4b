// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/storage"
	"github.com/jeranaias/termshell/internal/terminal"
)

// Store keys holding the persisted theme.
const (
	themeNameKey   = "theme.name"
	themeColorKeys = "theme.color."
)

// LoadTheme restores the theme persisted in store. fallback names the theme
// used when none was saved. Invalid persisted colors are skipped.
func LoadTheme(ctx context.Context, store *storage.Store, fallback string) (terminal.Theme, error) {
	name := fallback
	if store == nil {
		return terminal.MustTheme(name), nil
	}

	saved, err := store.Get(ctx, themeNameKey)
	switch {
	case err == nil:
		name = saved
	case !errors.Is(err, storage.ErrNotFound):
		return terminal.MustTheme(name), err
	}

	theme := terminal.MustTheme(name)
	overrides, err := store.List(ctx, themeColorKeys)
	if err != nil {
		return theme, err
	}
	for _, e := range overrides {
		_ = theme.Set(strings.TrimPrefix(e.Key, themeColorKeys), e.Value)
	}
	return theme, nil
}

func themeProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "theme",
		Description: "Inspect and change the color theme",
		Usage:       "theme list|show|apply <name>|set <key> <value>",
		Category:    CategoryUI,
		Processors: []*commands.Processor{
			{
				Command:     "list",
				Aliases:     []string{"ls"},
				Description: "List the built-in themes",
				Handler:     runThemeList,
			},
			{
				Command:     "show",
				Description: "Show the colors of the active theme",
				Handler:     runThemeShow,
			},
			{
				Command:     "apply",
				Aliases:     []string{"use"},
				Description: "Switch to a built-in theme",
				Usage:       "theme apply <name>",
				Parameters: []commands.Parameter{
					{
						Name:        "name",
						Positional:  true,
						Required:    true,
						Description: "Theme name",
						Values:      terminal.ThemeNames,
					},
				},
				Handler: runThemeApply,
			},
			{
				Command:     "set",
				Description: "Override one color of the active theme",
				Usage:       "theme set <key> <value>",
				Parameters: []commands.Parameter{
					{
						Name:        "key",
						Positional:  true,
						Required:    true,
						Description: "Theme key",
						Values:      func() []string { return terminal.ThemeKeys },
					},
					{
						Name:        "value",
						Positional:  true,
						Required:    true,
						Description: "Color name, #hex or ANSI index",
						Values:      colorNames,
					},
				},
				Handler: runThemeSet,
			},
		},
	})
}

func colorNames() []string {
	names := make([]string, 0, len(terminal.ColorNames))
	for name := range terminal.ColorNames {
		names = append(names, name)
	}
	return names
}

func runThemeList(_ context.Context, ec *commands.ExecutionContext) error {
	active := ""
	if host, err := service[ThemeHost](ec, commands.ServiceTheme); err == nil {
		active = host.Theme().Name
	}

	var rows []map[string]any
	for _, name := range terminal.ThemeNames() {
		t := terminal.MustTheme(name)
		mark := ""
		if name == active {
			mark = "*"
		}
		rows = append(rows, map[string]any{
			"active":   mark,
			"name":     name,
			"markdown": t.Markdown,
			"syntax":   t.Syntax,
		})
	}
	ec.Writer.WriteObjects(rows, "active", "name", "markdown", "syntax")
	return nil
}

func runThemeShow(_ context.Context, ec *commands.ExecutionContext) error {
	host, err := service[ThemeHost](ec, commands.ServiceTheme)
	if err != nil {
		return err
	}
	t := host.Theme()
	rows := make([]map[string]any, 0, len(terminal.ThemeKeys))
	for _, key := range terminal.ThemeKeys {
		rows = append(rows, map[string]any{"key": key, "color": t.Colors[key]})
	}
	ec.Writer.WriteInfo("theme: " + t.Name)
	ec.Writer.WriteObjects(rows, "key", "color")
	return nil
}

func runThemeApply(ctx context.Context, ec *commands.ExecutionContext) error {
	host, err := service[ThemeHost](ec, commands.ServiceTheme)
	if err != nil {
		return err
	}
	name := ec.Args.String("name", "")
	t, ok := terminal.LookupTheme(name)
	if !ok {
		return commands.Exit(commands.ExitUsage,
			fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(terminal.ThemeNames(), ", ")))
	}
	host.SetTheme(t)

	if store, err := storeOf(ec); err == nil {
		if err := store.Set(ctx, themeNameKey, t.Name); err != nil {
			return err
		}
		overrides, err := store.List(ctx, themeColorKeys)
		if err != nil {
			return err
		}
		for _, e := range overrides {
			if _, err := store.Delete(ctx, e.Key); err != nil {
				return err
			}
		}
	}

	ec.Writer.WriteSuccess("theme set to " + t.Name)
	return nil
}

func runThemeSet(ctx context.Context, ec *commands.ExecutionContext) error {
	host, err := service[ThemeHost](ec, commands.ServiceTheme)
	if err != nil {
		return err
	}
	key := strings.ToLower(ec.Args.String("key", ""))

	t := host.Theme().Clone()
	if err := t.Set(key, ec.Args.String("value", "")); err != nil {
		return commands.Exit(commands.ExitUsage, err)
	}
	host.SetTheme(t)

	if store, err := storeOf(ec); err == nil {
		if err := store.Set(ctx, themeNameKey, t.Name); err != nil {
			return err
		}
		if err := store.Set(ctx, themeColorKeys+key, t.Colors[key]); err != nil {
			return err
		}
	}

	ec.Writer.WriteSuccess(fmt.Sprintf("%s set to %s", key, t.Colors[key]))
	return nil
}
