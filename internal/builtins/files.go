// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/util"
)

// copyChunk is the unit of progress reporting.
const copyChunk = 64 * 1024

func cpProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "cp",
		Aliases:     []string{"copy"},
		Description: "Copy files or directories",
		Usage:       "cp [-r] [-f] <src> <dest>",
		Category:    CategorySystem,
		Parameters: []commands.Parameter{
			{Name: "src", Type: commands.ParamPath, Positional: true, Required: true, Description: "Source path"},
			{Name: "dest", Type: commands.ParamPath, Positional: true, Required: true, Description: "Destination path"},
			{Name: "recursive", Aliases: []string{"r"}, Type: commands.ParamBoolean, Description: "Copy directories"},
			{Name: "force", Aliases: []string{"f"}, Type: commands.ParamBoolean, Description: "Overwrite without asking"},
		},
		Handler: runCp,
	})
}

// copyJob is one file to copy.
type copyJob struct {
	src, dest string
	size      int64
	mode      fs.FileMode
}

// copyPlan is everything a copy will touch. Nothing exists on disk until
// the plan is applied.
type copyPlan struct {
	dirs []copyJob
	jobs []copyJob
}

func runCp(ctx context.Context, ec *commands.ExecutionContext) error {
	src := util.ExpandHome(ec.Args.String("src", ""))
	dest := util.ExpandHome(ec.Args.String("dest", ""))

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() && !ec.Args.Bool("recursive") {
		return commands.Exit(commands.ExitUsage, fmt.Errorf("%s is a directory (use -r)", src))
	}

	// Copying into an existing directory keeps the source name.
	if di, err := os.Stat(dest); err == nil && di.IsDir() {
		dest = filepath.Join(dest, filepath.Base(src))
	}
	if err := checkCopyTarget(src, dest, info); err != nil {
		return commands.Exit(commands.ExitUsage, err)
	}

	plan, err := planCopy(src, dest, info)
	if err != nil {
		return err
	}
	jobs := plan.jobs

	if !ec.Args.Bool("force") {
		ok, err := confirmOverwrite(ctx, ec, jobs)
		if err != nil {
			return err
		}
		if !ok {
			ec.Writer.WriteWarning("copy skipped")
			return commands.Exit(commands.ExitFailure, nil)
		}
	}

	var total, done int64
	for _, j := range jobs {
		total += j.size
	}
	report := func(n int64) {
		done += n
		if total > 0 {
			ec.Writer.WriteProgress("copying", float64(done)/float64(total))
		}
	}

	for _, d := range plan.dirs {
		if err := os.MkdirAll(d.dest, d.mode|0700); err != nil {
			return err
		}
	}
	for _, j := range jobs {
		if err := copyFile(ctx, j, report); err != nil {
			return err
		}
	}
	if total == 0 {
		ec.Writer.WriteProgress("copying", 1)
	}

	ec.Writer.WriteSuccess(fmt.Sprintf("copied %d file(s) to %s", len(jobs), dest))
	return nil
}

// checkCopyTarget rejects copies that would read from what they write.
func checkCopyTarget(src, dest string, info fs.FileInfo) error {
	if di, err := os.Stat(dest); err == nil && os.SameFile(info, di) {
		return fmt.Errorf("%s and %s are the same file", src, dest)
	}
	if !info.IsDir() {
		return nil
	}
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absSrc, absDest)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("cannot copy %s into itself", src)
	}
	return nil
}

// planCopy lists the directories and files to copy without touching dest.
func planCopy(src, dest string, info fs.FileInfo) (*copyPlan, error) {
	plan := &copyPlan{}
	if !info.IsDir() {
		plan.jobs = []copyJob{{src: src, dest: dest, size: info.Size(), mode: info.Mode().Perm()}}
		return plan, nil
	}

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		fi, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			plan.dirs = append(plan.dirs, copyJob{src: path, dest: target, mode: fi.Mode().Perm()})
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		plan.jobs = append(plan.jobs, copyJob{src: path, dest: target, size: fi.Size(), mode: fi.Mode().Perm()})
		return nil
	})
	return plan, err
}

// confirmOverwrite asks once when any destination file exists.
func confirmOverwrite(ctx context.Context, ec *commands.ExecutionContext, jobs []copyJob) (bool, error) {
	existing := 0
	for _, j := range jobs {
		if _, err := os.Stat(j.dest); err == nil {
			existing++
		}
	}
	if existing == 0 {
		return true, nil
	}

	reader, err := requireReader(ec)
	if err != nil {
		return false, commands.Exit(commands.ExitUsage, errors.New("destination exists (use -f)"))
	}
	prompt := fmt.Sprintf("Overwrite %d existing file(s)?", existing)
	return reader.ReadConfirm(ctx, prompt, false)
}

func copyFile(ctx context.Context, j copyJob, report func(int64)) error {
	in, err := os.Open(j.src)
	if err != nil {
		return err
	}
	defer in.Close()

	if si, err := in.Stat(); err == nil {
		if di, err := os.Stat(j.dest); err == nil && os.SameFile(si, di) {
			return fmt.Errorf("%s and %s are the same file", j.src, j.dest)
		}
	}
	if err := os.MkdirAll(filepath.Dir(j.dest), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(j.dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, j.mode)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, copyChunk)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return err
			}
			report(int64(n))
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	return out.Close()
}
