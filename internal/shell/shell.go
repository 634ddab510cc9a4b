// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/termshell/internal/builtins"
	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/completion"
	"github.com/jeranaias/termshell/internal/config"
	"github.com/jeranaias/termshell/internal/input"
	"github.com/jeranaias/termshell/internal/logging"
	"github.com/jeranaias/termshell/internal/pipeline"
	"github.com/jeranaias/termshell/internal/storage"
	"github.com/jeranaias/termshell/internal/terminal"
)

// Line editors.
const (
	EditorRaw   = "raw"
	EditorLiner = "liner"
)

// Options configures New.
type Options struct {
	// Config is used as is when set; otherwise it is loaded from ConfigPath
	// or the default location
	Config     *config.Config
	ConfigPath string

	// Debug forces debug logging
	Debug bool

	// LineEditor overrides ui.line_editor
	LineEditor string

	// In and Out default to stdin and stdout
	In  io.Reader
	Out io.Writer
}

// Shell is one interactive session.
type Shell struct {
	mu         sync.Mutex
	cfg        *config.Config
	configPath string

	logger   *log.Logger
	closeLog func() error

	store    *storage.Store
	term     *terminal.Terminal
	writer   *terminal.Writer
	history  *input.History
	registry *commands.Registry
	services *commands.Services
	engine   *completion.Engine
	exec     *pipeline.Executor

	// raw frontend state
	mode      *input.CommandLineMode
	reader    *input.Reader
	cancelRun context.CancelFunc
	runID     uint64
	idle      chan struct{} // closed when the current run finishes

	lastCode int
	exitCode int
	exitOnce sync.Once
	done     chan struct{}
}

var (
	_ builtins.Session  = (*Shell)(nil)
	_ builtins.Settings = (*Shell)(nil)
)

// New builds a session. Close releases it.
func New(ctx context.Context, opts Options) (*Shell, error) {
	cfg, path, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if opts.LineEditor != "" {
		cfg.UI.LineEditor = opts.LineEditor
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		Debug: opts.Debug,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open store: %w", err)
	}

	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	s := &Shell{
		cfg:        cfg,
		configPath: path,
		logger:     logger,
		closeLog:   closeLog,
		store:      store,
		term:       terminal.New(in, out),
		registry:   commands.NewRegistry(),
		services:   commands.NewServices(),
		done:       make(chan struct{}),
	}

	theme, err := builtins.LoadTheme(ctx, store, cfg.UI.Theme)
	if err != nil {
		logger.Warn("failed to restore theme", "err", err)
	}
	s.writer = terminal.NewWriter(s.term, theme, terminal.ColorProfile(out, cfg.UI.Color))

	entries, err := store.History(ctx)
	if err != nil {
		logger.Warn("failed to load history", "err", err)
	}
	s.history = input.NewHistory(cfg.Shell.HistorySize, entries, s.persistHistory)

	if err := builtins.Register(s.registry); err != nil {
		s.Close()
		return nil, err
	}

	s.services.Register(commands.ServiceStore, store)
	s.services.Register(commands.ServiceConfig, builtins.Settings(s))
	s.services.Register(commands.ServiceSession, builtins.Session(s))
	s.services.Register(commands.ServiceHistory, builtins.History(s.history))
	s.services.Register(commands.ServiceRegistry, s.registry)
	s.services.Register(commands.ServiceTheme, builtins.ThemeHost(s.writer))

	s.engine = completion.NewEngine(
		completion.CommandProvider{Registry: s.registry},
		completion.ValueProvider{Registry: s.registry},
		livePaths{s},
		completion.ParameterProvider{Registry: s.registry},
	)

	logger.Info("session started", "config", path, "store", cfg.Storage.Path, "editor", cfg.UI.LineEditor)
	return s, nil
}

func loadConfig(opts Options) (*config.Config, string, error) {
	switch {
	case opts.Config != nil:
		return opts.Config.Clone(), opts.ConfigPath, nil
	case opts.ConfigPath != "":
		cfg, err := config.LoadFromPath(opts.ConfigPath)
		return cfg, opts.ConfigPath, err
	default:
		return config.Load()
	}
}

// Registry returns the processor registry so callers can add processors.
func (s *Shell) Registry() *commands.Registry {
	return s.registry
}

// Services returns the service set handed to processors.
func (s *Shell) Services() *commands.Services {
	return s.services
}

// Close releases the store and the log file.
func (s *Shell) Close() error {
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.closeLog(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// =============================================================================
// EXECUTION
// =============================================================================

// start builds the executor around reader and runs processor initializers.
func (s *Shell) start(reader commands.Reader) error {
	if s.exec != nil {
		return nil
	}
	dir, _ := os.Getwd()
	s.exec = pipeline.New(s.registry,
		pipeline.WithServices(s.services),
		pipeline.WithReader(reader),
		pipeline.WithAppender(pipeline.FileAppender{Dir: dir}),
		pipeline.WithLogger(s.logger),
	)
	return s.registry.Attach(&commands.Environment{
		Writer:   s.writer,
		Reader:   reader,
		Services: s.services,
		Logger:   s.logger,
	})
}

// RunLine executes line without a frontend and returns its exit code.
func (s *Shell) RunLine(ctx context.Context, line string) (int, error) {
	if err := s.start(nil); err != nil {
		return commands.ExitFailure, err
	}
	res := s.exec.Execute(ctx, line, s.writer)
	s.setLastCode(res.ExitCode)
	return res.ExitCode, nil
}

// Run starts the configured frontend and blocks until the session ends. It
// returns the exit code the session ended with.
func (s *Shell) Run(ctx context.Context) (int, error) {
	if s.Current().UI.LineEditor == EditorLiner {
		return s.runLiner(ctx)
	}
	return s.runRaw(ctx)
}

// =============================================================================
// SESSION
// =============================================================================

// Exit ends the session with code. Only the first call counts.
func (s *Shell) Exit(code int) {
	s.exitOnce.Do(func() {
		s.mu.Lock()
		s.exitCode = code
		s.mu.Unlock()
		s.logger.Info("session ending", "code", code)
		close(s.done)
	})
}

// Done is closed once Exit has been called.
func (s *Shell) Done() <-chan struct{} {
	return s.done
}

func (s *Shell) exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Shell) code() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

func (s *Shell) setLastCode(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCode = code
}

func (s *Shell) last() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCode
}

func (s *Shell) persistHistory(lines []string) {
	if err := s.store.ReplaceHistory(context.Background(), lines); err != nil {
		s.logger.Warn("failed to save history", "err", err)
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

// Current returns a copy of the active configuration.
func (s *Shell) Current() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Path returns the config file path used by config save.
func (s *Shell) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configPath != "" {
		return s.configPath
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "config.toml"
	}
	return path
}

// Apply validates cfg and makes it active. The prompt, theme, color mask,
// completion and log level take effect at once; storage, log file and
// history size need a restart.
func (s *Shell) Apply(cfg *config.Config) error {
	cfg = cfg.Clone()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	old := s.cfg
	s.cfg = cfg
	mode, reader := s.mode, s.reader
	s.mu.Unlock()

	if cfg.UI.Theme != old.UI.Theme {
		s.writer.SetTheme(terminal.MustTheme(cfg.UI.Theme))
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		s.logger.SetLevel(lvl)
	}
	if mode != nil {
		mode.SetMaxCandidates(cfg.Completion.MaxCandidates)
	}
	if reader != nil {
		reader.SetMask(maskRune(cfg.UI.PasswordMask))
		reader.SetSelectedStyle(s.writer.Styles().Selected)
	}

	s.logger.Debug("configuration applied")
	return nil
}

func maskRune(mask string) rune {
	if mask == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(mask)
	return r
}

// prompt renders the prompt with the active theme.
func (s *Shell) prompt() string {
	return s.writer.Styles().Prompt.Render(s.Current().Prompt)
}

// =============================================================================
// COMPLETION
// =============================================================================

// livePaths is a PathProvider that follows the active configuration.
type livePaths struct{ s *Shell }

func (livePaths) Priority() int { return completion.PathProvider{}.Priority() }

func (p livePaths) Complete(ctx completion.Context) []string {
	cfg := p.s.Current()
	return completion.PathProvider{
		Registry: p.s.registry,
		Commands: cfg.Completion.PathCommands,
		Max:      cfg.Completion.MaxCandidates,
	}.Complete(ctx)
}
