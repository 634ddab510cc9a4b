// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/termshell/internal/config"
	"github.com/jeranaias/termshell/internal/input"
)

// runRaw drives the session from raw keystrokes.
func (s *Shell) runRaw(ctx context.Context) (int, error) {
	if s.term.IsTerminal() {
		if err := s.term.MakeRaw(); err != nil {
			return 1, err
		}
		defer s.term.Restore()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := s.Current()
	mode := input.NewCommandLineMode(input.CommandLineConfig{
		Display:       s.term,
		Engine:        s.engine,
		History:       s.history,
		Prompt:        s.prompt,
		OnSubmit:      func(line string) { s.submit(ctx, line) },
		OnInterrupt:   s.interrupt,
		OnExit:        func() { s.Exit(s.last()) },
		MaxCandidates: cfg.Completion.MaxCandidates,
	})
	stack := input.NewStack(mode, s.logger)
	reader := input.NewReader(stack, s.term)
	reader.SetMask(maskRune(cfg.UI.PasswordMask))
	reader.SetSelectedStyle(s.writer.Styles().Selected)

	s.mu.Lock()
	s.mode, s.reader = mode, reader
	s.mu.Unlock()

	if err := s.start(reader); err != nil {
		return 1, err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.term.ReadLoop(gctx, stack.HandleInput)
		if gctx.Err() == nil {
			// Input ended: let the running command finish, then leave.
			s.waitIdle()
			s.Exit(s.last())
		}
		return err
	})

	g.Go(func() error {
		s.term.WatchResize(gctx)
		return nil
	})

	if path := s.configPath; path != "" {
		if _, err := os.Stat(path); err == nil {
			g.Go(func() error { return s.watchConfig(gctx, path) })
		}
	}

	g.Go(func() error {
		select {
		case <-s.done:
		case <-gctx.Done():
		}
		cancel()
		return nil
	})

	mode.Activate()
	err := g.Wait()
	s.waitIdle()
	s.term.Write("\n")

	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return s.code(), err
}

// submit runs line on its own goroutine.
func (s *Shell) submit(ctx context.Context, line string) {
	runCtx, cancel := context.WithCancel(ctx)

	idle := make(chan struct{})
	s.mu.Lock()
	s.cancelRun = cancel
	s.runID++
	s.idle = idle
	s.mu.Unlock()

	go func() {
		defer close(idle)
		defer cancel()

		res := s.exec.Execute(runCtx, line, s.writer)

		s.mu.Lock()
		s.cancelRun = nil
		s.lastCode = res.ExitCode
		mode := s.mode
		s.mu.Unlock()

		if mode != nil && !s.exited() {
			mode.Ready()
		}
	}()
}

// waitIdle blocks until the most recent submitted line has finished.
func (s *Shell) waitIdle() {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	if idle != nil {
		<-idle
	}
}

// interrupt aborts the running command. A command still running after the
// grace period gets a warning.
func (s *Shell) interrupt() {
	s.mu.Lock()
	cancel, id := s.cancelRun, s.runID
	grace := time.Duration(s.cfg.Shell.AbortGraceMs) * time.Millisecond
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	s.logger.Debug("interrupt", "run", id)
	cancel()

	if grace <= 0 {
		return
	}
	time.AfterFunc(grace, func() {
		s.mu.Lock()
		stuck := s.cancelRun != nil && s.runID == id
		s.mu.Unlock()
		if stuck {
			s.writer.WriteWarning("command is still running after interrupt")
		}
	})
}

// watchConfig applies edits of the config file until ctx is done.
func (s *Shell) watchConfig(ctx context.Context, path string) error {
	return config.Watch(ctx, path, config.DefaultDebounce,
		func(cfg *config.Config) {
			if err := s.Apply(cfg); err != nil {
				s.writer.WriteWarning("config reload rejected: " + err.Error())
				return
			}
			s.logger.Info("configuration reloaded", "path", path)
			s.mu.Lock()
			mode := s.mode
			s.mu.Unlock()
			if mode != nil && !mode.Busy() {
				s.writer.WriteInfo("configuration reloaded")
				mode.Activate()
			}
		},
		func(err error) {
			s.logger.Warn("config reload failed", "err", err)
		},
	)
}
