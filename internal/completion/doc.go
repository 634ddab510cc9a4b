// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion provides tab completion for the shell.
//
// An Engine asks its providers, in priority order, for candidates for the
// token under the cursor. The first provider with results wins. Repeated Tab
// presses on unchanged input switch from completing to listing candidates.
//
// # Providers
//
//   - CommandProvider: processor names and sub-processor names
//   - PathProvider: filesystem paths for path-typed arguments
//   - ParameterProvider: --name and -alias flags
package completion
