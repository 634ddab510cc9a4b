// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "context"

// Writer is the output surface handed to processors.
//
// Write, WriteLine, WriteMarkdown, WriteJSON and WriteObjects produce data that
// can be piped to the next command. The diagnostic methods never are.
type Writer interface {
	Write(s string)
	WriteLine(s string)
	WriteMarkdown(md string)
	WriteJSON(v any)
	// WriteObjects renders rows as a table. Columns fixes the column order;
	// when empty the sorted union of row keys is used.
	WriteObjects(rows []map[string]any, columns ...string)

	WriteError(msg string)
	WriteWarning(msg string)
	WriteInfo(msg string)
	WriteSuccess(msg string)

	// WriteProgress draws a progress indicator; fraction is in [0, 1].
	WriteProgress(label string, fraction float64)
	Clear()
}

// Reader prompts the user while a processor runs.
//
// Only one request may be pending at a time; a second call returns
// ErrRequestActive. Escape, Ctrl+C, or ctx cancellation return ErrCanceled.
type Reader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	ReadPassword(ctx context.Context, prompt string) (string, error)
	ReadConfirm(ctx context.Context, prompt string, def bool) (bool, error)
	// ReadSelect returns the chosen index. onChange, if set, is called as the
	// highlighted option moves.
	ReadSelect(ctx context.Context, prompt string, options []string, onChange func(int)) (int, error)
}
