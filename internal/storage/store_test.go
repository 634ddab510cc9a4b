// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "theme.name", "ocean"))
	v, err := s.Get(ctx, "theme.name")
	require.NoError(t, err)
	assert.Equal(t, "ocean", v)

	require.NoError(t, s.Set(ctx, "theme.name", "mono"))
	v, err = s.Get(ctx, "theme.name")
	require.NoError(t, err)
	assert.Equal(t, "mono", v)

	ok, err := s.Delete(ctx, "theme.name")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, "theme.name")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreEmptyKey(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	assert.ErrorIs(t, s.Set(ctx, " ", "x"), ErrEmptyKey)
	_, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, err = s.Delete(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestStoreListPrefix(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	for k, v := range map[string]string{
		"theme.accent": "red",
		"theme.name":   "forge",
		"totp.secret":  "abc",
		"theme_x":      "no",
	} {
		require.NoError(t, s.Set(ctx, k, v))
	}

	entries, err := s.List(ctx, "theme.")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "theme.accent", entries[0].Key)
	assert.Equal(t, "theme.name", entries[1].Key)
	assert.False(t, entries[0].UpdatedAt.IsZero())

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStoreHistory(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	lines, err := s.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, s.ReplaceHistory(ctx, []string{"echo a", "help"}))
	require.NoError(t, s.ReplaceHistory(ctx, []string{"help", "theme list", "echo b"}))

	lines, err = s.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"help", "theme list", "echo b"}, lines)
}

func TestStorePersistsOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "shell.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, path, s.Path())
}
