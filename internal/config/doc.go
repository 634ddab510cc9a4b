// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for termshell.
//
// TOML, YAML and JSON files are supported, chosen by extension, with
// sensible defaults, environment variable overrides, and validation.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TERMSHELL_*)
//   - ~/.termshell/config.toml, config.yaml, config.yml or config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, path, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	theme, _ := cfg.Get("ui.theme")
//
// Watch reloads the file on change so the prompt, theme and completion
// settings can follow edits made while the shell runs.
package config
