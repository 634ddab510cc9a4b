// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/jeranaias/termshell/internal/commands"
)

// PathProvider completes filesystem paths for processors that declare a path
// parameter, and for any command listed in Commands.
type PathProvider struct {
	Registry *commands.Registry

	// Commands always get path completion (e.g., "cat")
	Commands []string

	// Dir resolves relative paths; empty means the working directory
	Dir string

	// Max caps the number of candidates; zero means no cap
	Max int
}

// Priority implements Provider.
func (PathProvider) Priority() int { return 50 }

// Complete implements Provider.
func (c PathProvider) Complete(ctx Context) []string {
	if ctx.IsFlag() || len(ctx.Words()) == 0 {
		return nil
	}
	if !c.applies(ctx) {
		return nil
	}
	return c.files(ctx.Token)
}

func (c PathProvider) applies(ctx Context) bool {
	words := ctx.Words()
	if slices.ContainsFunc(c.Commands, func(name string) bool {
		return strings.EqualFold(name, words[0])
	}) {
		return true
	}

	p := resolve(c.Registry, ctx)
	if p == nil {
		return false
	}
	for _, param := range p.Parameters {
		if param.Type == commands.ParamPath {
			return true
		}
	}
	return false
}

// files lists directory entries matching partial. The typed directory part
// is kept verbatim so the result always extends what the user typed.
// Directories get a trailing separator. Hidden entries are skipped unless the
// partial name starts with a dot.
func (c PathProvider) files(partial string) []string {
	typedDir, prefix := "", partial
	if i := strings.LastIndexAny(partial, `/`+string(os.PathSeparator)); i >= 0 {
		typedDir, prefix = partial[:i+1], partial[i+1:]
	}

	dir := typedDir
	if strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[2:])
		}
	}
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) && c.Dir != "" {
		dir = filepath.Join(c.Dir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	lowerPrefix := strings.ToLower(prefix)
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		path := typedDir + name
		if entry.IsDir() {
			path += "/"
		}
		out = append(out, path)
	}

	sort.Strings(out)
	if c.Max > 0 && len(out) > c.Max {
		out = out[:c.Max]
	}
	return out
}
