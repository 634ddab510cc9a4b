// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/termshell/internal/terminal"
	"github.com/jeranaias/termshell/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete termshell configuration.
type Config struct {
	// Prompt is shown before every command line
	Prompt string `toml:"prompt" json:"prompt" yaml:"prompt"`

	Shell      ShellConfig      `toml:"shell" json:"shell" yaml:"shell"`
	UI         UIConfig         `toml:"ui" json:"ui" yaml:"ui"`
	Completion CompletionConfig `toml:"completion" json:"completion" yaml:"completion"`
	Storage    StorageConfig    `toml:"storage" json:"storage" yaml:"storage"`
	Log        LogConfig        `toml:"log" json:"log" yaml:"log"`
}

// ShellConfig contains session settings.
type ShellConfig struct {
	// HistorySize bounds the persisted command history
	HistorySize int `toml:"history_size" json:"history_size" yaml:"history_size"`
	// AbortGraceMs is how long an interrupted command may take to stop
	// before the shell warns that it is still running
	AbortGraceMs int `toml:"abort_grace_ms" json:"abort_grace_ms" yaml:"abort_grace_ms"`
}

// UIConfig contains display settings.
type UIConfig struct {
	// Theme is the name of a built-in theme
	Theme string `toml:"theme" json:"theme" yaml:"theme"`
	// LineEditor selects the frontend: "raw" or "liner"
	LineEditor string `toml:"line_editor" json:"line_editor" yaml:"line_editor"`
	// PasswordMask is echoed per typed password rune; empty echoes nothing
	PasswordMask string `toml:"password_mask" json:"password_mask" yaml:"password_mask"`
	// Color is "auto", "always" or "never"
	Color string `toml:"color" json:"color" yaml:"color"`
}

// CompletionConfig contains tab completion settings.
type CompletionConfig struct {
	// PathCommands always complete filesystem paths
	PathCommands []string `toml:"path_commands" json:"path_commands" yaml:"path_commands"`
	// MaxCandidates caps the listing shown on a second Tab
	MaxCandidates int `toml:"max_candidates" json:"max_candidates" yaml:"max_candidates"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	// Path is the SQLite database file; ":memory:" keeps nothing
	Path string `toml:"path" json:"path" yaml:"path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is "debug", "info", "warn", "error" or "off"
	Level string `toml:"level" json:"level" yaml:"level"`
	// File receives log output
	File string `toml:"file" json:"file" yaml:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Prompt: "termshell> ",
		Shell: ShellConfig{
			HistorySize:  500,
			AbortGraceMs: 2000,
		},
		UI: UIConfig{
			Theme:        terminal.DefaultTheme,
			LineEditor:   "raw",
			PasswordMask: "*",
			Color:        "auto",
		},
		Completion: CompletionConfig{
			PathCommands:  []string{"cp"},
			MaxCandidates: 100,
		},
		Storage: StorageConfig{
			Path: "",
		},
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the termshell configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".termshell"), nil
}

// candidateNames are tried in order by Load.
var candidateNames = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// DefaultPath returns the first existing config file in ConfigDir, or the
// TOML path when none exists.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range candidateNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return filepath.Join(dir, candidateNames[0]), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the configuration from DefaultPath, falling back to defaults
// when no file exists. Environment overrides are applied last.
func Load() (*Config, string, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, "", err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, path, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, path, nil
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

// LoadFromPath loads configuration from a specific file with full
// validation. The format follows the extension; TOML is the default.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := decode(cfg, data, formatOf(path)); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

func decode(cfg *Config, data []byte, format string) error {
	switch format {
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to decode TOML: %w", err)
		}
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to path atomically, in the format its
// extension names.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer

	switch formatOf(path) {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	default:
		fmt.Fprintln(&buf, "# termshell configuration file")
		fmt.Fprintln(&buf, "# Generated by termshell - edit with care")
		fmt.Fprintln(&buf, "")
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validLineEditors = []string{"raw", "liner"}
	validColors      = []string{"auto", "always", "never"}
	validLogLevels   = []string{"debug", "info", "warn", "error", "off"}
)

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Shell.HistorySize < 0 || c.Shell.HistorySize > 100000 {
		errs = append(errs, ValidationError{
			Field:   "shell.history_size",
			Message: fmt.Sprintf("must be between 0 and 100000, got %d", c.Shell.HistorySize),
		})
	}
	if c.Shell.AbortGraceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "shell.abort_grace_ms",
			Message: "must not be negative",
		})
	}

	if _, ok := terminal.LookupTheme(c.UI.Theme); !ok {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: %s", c.UI.Theme, strings.Join(terminal.ThemeNames(), ", ")),
		})
	}
	if !oneOf(c.UI.LineEditor, validLineEditors) {
		errs = append(errs, ValidationError{
			Field:   "ui.line_editor",
			Message: fmt.Sprintf("invalid line editor '%s', must be one of: %s", c.UI.LineEditor, strings.Join(validLineEditors, ", ")),
		})
	}
	if utf8.RuneCountInString(c.UI.PasswordMask) > 1 {
		errs = append(errs, ValidationError{
			Field:   "ui.password_mask",
			Message: "must be a single character or empty",
		})
	}
	if !oneOf(c.UI.Color, validColors) {
		errs = append(errs, ValidationError{
			Field:   "ui.color",
			Message: fmt.Sprintf("invalid color mode '%s', must be one of: %s", c.UI.Color, strings.Join(validColors, ", ")),
		})
	}

	if c.Completion.MaxCandidates < 0 {
		errs = append(errs, ValidationError{
			Field:   "completion.max_candidates",
			Message: "must not be negative",
		})
	}

	if !oneOf(c.Log.Level, validLogLevels) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: %s", c.Log.Level, strings.Join(validLogLevels, ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills missing values and resolves paths under ConfigDir.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Prompt == "" {
		c.Prompt = defaults.Prompt
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.LineEditor == "" {
		c.UI.LineEditor = defaults.UI.LineEditor
	}
	if c.UI.Color == "" {
		c.UI.Color = defaults.UI.Color
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}

	c.UI.Theme = strings.ToLower(c.UI.Theme)
	c.UI.LineEditor = strings.ToLower(c.UI.LineEditor)
	c.UI.Color = strings.ToLower(c.UI.Color)
	c.Log.Level = strings.ToLower(c.Log.Level)

	dir, err := ConfigDir()
	if err != nil {
		dir = "."
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(dir, "termshell.db")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "termshell.log")
	}
	c.Storage.Path = util.ExpandHome(c.Storage.Path)
	c.Log.File = util.ExpandHome(c.Log.File)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// envOverrides maps environment variables to config keys.
var envOverrides = map[string]string{
	"TERMSHELL_PROMPT":       "prompt",
	"TERMSHELL_HISTORY_SIZE": "shell.history_size",
	"TERMSHELL_THEME":        "ui.theme",
	"TERMSHELL_LINE_EDITOR":  "ui.line_editor",
	"TERMSHELL_COLOR":        "ui.color",
	"TERMSHELL_STORAGE":      "storage.path",
	"TERMSHELL_LOG_LEVEL":    "log.level",
	"TERMSHELL_LOG_FILE":     "log.file",
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TERMSHELL_PROMPT: overrides prompt
//   - TERMSHELL_HISTORY_SIZE: overrides shell.history_size
//   - TERMSHELL_THEME: overrides ui.theme
//   - TERMSHELL_LINE_EDITOR: overrides ui.line_editor
//   - TERMSHELL_COLOR: overrides ui.color
//   - TERMSHELL_STORAGE: overrides storage.path
//   - TERMSHELL_LOG_LEVEL: overrides log.level
//   - TERMSHELL_LOG_FILE: overrides log.file
//
// Values that do not parse for their field are ignored.
func (c *Config) ApplyEnvOverrides() {
	for env, key := range envOverrides {
		if v := os.Getenv(env); v != "" {
			_ = c.Set(key, v)
		}
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// String values are converted to the field's type.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByKey(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// fieldByKey finds the field whose toml tag or Go name matches part.
func fieldByKey(v reflect.Value, part string) (reflect.Value, bool) {
	t := v.Type()
	name := normalizeFieldName(part)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if strings.EqualFold(tagName(f), part) || strings.EqualFold(f.Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tagName(f reflect.StructField) string {
	tag, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	return tag
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from a value with type conversion.
func setFieldValue(field reflect.Value, value any) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strings.TrimSpace(strVal), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	if value == nil {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation, sorted.
func GetAllKeys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := prefix + tagName(f)
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, name+".")
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	sort.Strings(keys)
	return keys
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Completion.PathCommands = append([]string(nil), c.Completion.PathCommands...)
	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
