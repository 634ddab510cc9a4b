// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Appender receives the output of a segment followed by >>.
type Appender interface {
	Append(ctx context.Context, target, data string) error
}

// FileAppender appends to files, resolving relative targets against Dir.
type FileAppender struct {
	Dir string
}

// Append implements Appender. A trailing newline is added when missing.
func (a FileAppender) Append(ctx context.Context, target, data string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := target
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if !filepath.IsAbs(path) && a.Dir != "" {
		path = filepath.Join(a.Dir, path)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	defer f.Close()

	if data != "" && !strings.HasSuffix(data, "\n") {
		data += "\n"
	}
	if _, err := f.WriteString(data); err != nil {
		return fmt.Errorf("append to %s: %w", target, err)
	}
	return f.Close()
}
