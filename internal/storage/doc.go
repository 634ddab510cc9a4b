// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides key-value persistence for termshell.
//
// A Store is a SQLite database (pure Go driver) holding two tables: a
// key-value table used by the store, theme and totp commands, and the
// command history.
//
// # Usage
//
//	store, err := storage.Open(ctx, path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.Set(ctx, "theme.name", "ocean")
//	value, err := store.Get(ctx, "theme.name")
//
// # Storage Location
//
// The database lives at ~/.termshell/termshell.db unless storage.path says
// otherwise. ":memory:" keeps everything in memory.
package storage
