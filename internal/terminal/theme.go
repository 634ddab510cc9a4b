// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEMES
// =============================================================================

// DefaultTheme is the theme used when none is configured.
const DefaultTheme = "forge"

// Theme is a named palette. Colors maps a theme key to a lipgloss color
// (hex, ANSI index, or a name from ColorNames).
type Theme struct {
	Name   string
	Colors map[string]string

	// Markdown is the glamour standard style used for markdown output
	Markdown string

	// Syntax is the chroma style used for JSON output
	Syntax string
}

// Theme keys.
const (
	KeyAccent     = "accent"
	KeyBackground = "background"
	KeyError      = "error"
	KeyForeground = "foreground"
	KeyInfo       = "info"
	KeyMuted      = "muted"
	KeyPrompt     = "prompt"
	KeySuccess    = "success"
	KeyWarning    = "warning"
)

// ThemeKeys lists the keys a theme can set, sorted.
var ThemeKeys = []string{
	KeyAccent, KeyBackground, KeyError, KeyForeground, KeyInfo,
	KeyMuted, KeyPrompt, KeySuccess, KeyWarning,
}

// ColorNames maps friendly color names to hex values.
var ColorNames = map[string]string{
	"black":   "#000000",
	"white":   "#F5F5F5",
	"gray":    "#6B7280",
	"grey":    "#6B7280",
	"red":     "#FB7185",
	"green":   "#34D399",
	"yellow":  "#FBBF24",
	"blue":    "#60A5FA",
	"magenta": "#E879F9",
	"purple":  "#A78BFA",
	"cyan":    "#22D3EE",
	"orange":  "#FB923C",
}

var builtinThemes = map[string]Theme{
	"forge": {
		Name: "forge",
		Colors: map[string]string{
			KeyAccent:     "#A78BFA",
			KeyBackground: "#313244",
			KeyError:      "#FB7185",
			KeyForeground: "#CDD6F4",
			KeyInfo:       "#22D3EE",
			KeyMuted:      "#6C7086",
			KeyPrompt:     "#22D3EE",
			KeySuccess:    "#34D399",
			KeyWarning:    "#FBBF24",
		},
		Markdown: "dark",
		Syntax:   "monokai",
	},
	"ocean": {
		Name: "ocean",
		Colors: map[string]string{
			KeyAccent:     "#60A5FA",
			KeyBackground: "#164E63",
			KeyError:      "#F87171",
			KeyForeground: "#E0F2FE",
			KeyInfo:       "#38BDF8",
			KeyMuted:      "#64748B",
			KeyPrompt:     "#2DD4BF",
			KeySuccess:    "#4ADE80",
			KeyWarning:    "#FACC15",
		},
		Markdown: "dracula",
		Syntax:   "dracula",
	},
	"light": {
		Name: "light",
		Colors: map[string]string{
			KeyAccent:     "#7C3AED",
			KeyBackground: "#F5F5F5",
			KeyError:      "#E11D48",
			KeyForeground: "#1F2937",
			KeyInfo:       "#0891B2",
			KeyMuted:      "#9CA3AF",
			KeyPrompt:     "#0E7490",
			KeySuccess:    "#059669",
			KeyWarning:    "#D97706",
		},
		Markdown: "light",
		Syntax:   "github",
	},
	"mono": {
		Name: "mono",
		Colors: map[string]string{
			KeyAccent:     "255",
			KeyBackground: "238",
			KeyError:      "255",
			KeyForeground: "252",
			KeyInfo:       "250",
			KeyMuted:      "242",
			KeyPrompt:     "255",
			KeySuccess:    "252",
			KeyWarning:    "250",
		},
		Markdown: "dark",
		Syntax:   "bw",
	},
}

// ThemeNames returns the names of the built-in themes, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTheme returns a copy of the named built-in theme.
func LookupTheme(name string) (Theme, bool) {
	t, ok := builtinThemes[strings.ToLower(name)]
	if !ok {
		return Theme{}, false
	}
	return t.Clone(), true
}

// MustTheme returns the named theme, or the default theme.
func MustTheme(name string) Theme {
	if t, ok := LookupTheme(name); ok {
		return t
	}
	t, _ := LookupTheme(DefaultTheme)
	return t
}

// Clone returns a deep copy of t.
func (t Theme) Clone() Theme {
	colors := make(map[string]string, len(t.Colors))
	for k, v := range t.Colors {
		colors[k] = v
	}
	t.Colors = colors
	return t
}

// Color returns the color for key.
func (t Theme) Color(key string) lipgloss.Color {
	return lipgloss.Color(t.Colors[key])
}

// Set overrides one key with a color value.
func (t *Theme) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !isThemeKey(key) {
		return fmt.Errorf("unknown theme key %q (expected one of: %s)", key, strings.Join(ThemeKeys, ", "))
	}
	color, err := ParseColor(value)
	if err != nil {
		return err
	}
	if t.Colors == nil {
		t.Colors = make(map[string]string)
	}
	t.Colors[key] = color
	return nil
}

func isThemeKey(key string) bool {
	for _, k := range ThemeKeys {
		if k == key {
			return true
		}
	}
	return false
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ParseColor validates a color value and returns its canonical form.
// Accepted: a name from ColorNames, #rgb, #rrggbb, or an ANSI index 0-255.
func ParseColor(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if hex, ok := ColorNames[v]; ok {
		return hex, nil
	}
	if hexColor.MatchString(v) {
		return strings.ToUpper(v), nil
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 255 {
		return strconv.Itoa(n), nil
	}
	return "", fmt.Errorf("invalid color %q", value)
}

// =============================================================================
// STYLES
// =============================================================================

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Prompt   lipgloss.Style
	Accent   lipgloss.Style
	Text     lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
}

// Styles builds the styles of t for renderer r.
func (t Theme) Styles(r *lipgloss.Renderer) Styles {
	return Styles{
		Prompt:  r.NewStyle().Foreground(t.Color(KeyPrompt)).Bold(true),
		Accent:  r.NewStyle().Foreground(t.Color(KeyAccent)),
		Text:    r.NewStyle().Foreground(t.Color(KeyForeground)),
		Error:   r.NewStyle().Foreground(t.Color(KeyError)).Bold(true),
		Warning: r.NewStyle().Foreground(t.Color(KeyWarning)),
		Info:    r.NewStyle().Foreground(t.Color(KeyInfo)),
		Success: r.NewStyle().Foreground(t.Color(KeySuccess)).Bold(true),
		Muted:   r.NewStyle().Foreground(t.Color(KeyMuted)),
		Header: r.NewStyle().
			Foreground(t.Color(KeyAccent)).
			Background(t.Color(KeyBackground)).
			Bold(true).
			Padding(0, 1),
		Selected: r.NewStyle().
			Foreground(t.Color(KeyForeground)).
			Background(t.Color(KeyBackground)).
			Bold(true),
	}
}
