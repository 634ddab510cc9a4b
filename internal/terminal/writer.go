// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/time/rate"

	"github.com/jeranaias/termshell/internal/commands"
)

// progressInterval is the minimum time between progress redraws.
const progressInterval = 50 * time.Millisecond

// Output is where a Writer draws. *Terminal implements it.
type Output interface {
	Write(s string)
	Width() int
}

// Writer renders command output onto an Output.
type Writer struct {
	out      Output
	renderer *lipgloss.Renderer
	profile  termenv.Profile

	mu     sync.Mutex
	theme  Theme
	styles Styles

	md    *glamour.TermRenderer
	mdKey string

	bar        progress.Model
	limiter    *rate.Limiter
	inProgress bool
}

var _ commands.Writer = (*Writer)(nil)

// NewWriter creates a writer drawing onto out with theme. An Ascii profile
// disables colors.
func NewWriter(out Output, theme Theme, profile termenv.Profile) *Writer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)

	w := &Writer{
		out:      out,
		renderer: r,
		profile:  profile,
		limiter:  rate.NewLimiter(rate.Every(progressInterval), 1),
	}
	w.SetTheme(theme)
	return w
}

// SetTheme switches the palette for subsequent output.
func (w *Writer) SetTheme(t Theme) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.theme = t.Clone()
	w.renderer.SetHasDarkBackground(t.Markdown != "light")
	w.styles = w.theme.Styles(w.renderer)
	w.md, w.mdKey = nil, ""
	w.bar = progress.New(
		progress.WithSolidFill(t.Colors[KeyAccent]),
		progress.WithColorProfile(w.profile),
	)
}

// Theme returns a copy of the current theme.
func (w *Writer) Theme() Theme {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.theme.Clone()
}

// Styles returns the current styles.
func (w *Writer) Styles() Styles {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.styles
}

// Colors reports whether output is colored.
func (w *Writer) Colors() bool {
	return w.profile != termenv.Ascii
}

// emit writes s, first ending any progress line in flight.
func (w *Writer) emit(s string) {
	w.mu.Lock()
	if w.inProgress {
		s = "\n" + s
		w.inProgress = false
	}
	w.mu.Unlock()
	w.out.Write(s)
}

// =============================================================================
// DATA
// =============================================================================

func (w *Writer) Write(s string) {
	w.emit(s)
}

func (w *Writer) WriteLine(s string) {
	w.emit(s + "\n")
}

// WriteMarkdown renders md with glamour, falling back to the raw text.
func (w *Writer) WriteMarkdown(md string) {
	w.emit(w.renderMarkdown(md) + "\n")
}

func (w *Writer) renderMarkdown(md string) string {
	width := w.out.Width()
	w.mu.Lock()
	defer w.mu.Unlock()

	style := w.theme.Markdown
	if style == "" {
		style = "dark"
	}
	if w.profile == termenv.Ascii {
		style = "notty"
	}

	key := fmt.Sprintf("%s/%d", style, width)
	if w.md == nil || w.mdKey != key {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width-2),
		)
		if err != nil {
			return md
		}
		w.md, w.mdKey = r, key
	}

	out, err := w.md.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// WriteJSON writes v as indented JSON, highlighted when colors are on.
func (w *Writer) WriteJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.WriteError(fmt.Sprintf("encode json: %v", err))
		return
	}
	text := string(data)
	if w.Colors() {
		text = w.highlight(text, "json")
	}
	w.emit(text + "\n")
}

func (w *Writer) highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		return code
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(w.Theme().Syntax)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get(formatterFor(w.profile))
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatterFor(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	default:
		return "terminal16"
	}
}

// WriteObjects renders rows as a bordered table.
func (w *Writer) WriteObjects(rows []map[string]any, columns ...string) {
	st := w.Styles()
	if len(rows) == 0 {
		w.emit(st.Muted.Render("(no rows)") + "\n")
		return
	}
	if len(columns) == 0 {
		columns = Columns(rows)
	}

	data := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = CellText(row[col])
		}
		data[i] = cells
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.Muted).
		Headers(columns...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.Accent.Bold(true).Padding(0, 1)
			}
			return st.Text.Padding(0, 1)
		})
	w.emit(t.String() + "\n")
}

// Columns returns the sorted union of the keys of rows.
func Columns(rows []map[string]any) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// CellText renders one table cell.
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case map[string]any, []any:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	default:
		return fmt.Sprint(x)
	}
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

func (w *Writer) WriteError(msg string) {
	w.emit(w.Styles().Error.Render("✗ "+msg) + "\n")
}

func (w *Writer) WriteWarning(msg string) {
	w.emit(w.Styles().Warning.Render("⚠ "+msg) + "\n")
}

func (w *Writer) WriteInfo(msg string) {
	w.emit(w.Styles().Info.Render(msg) + "\n")
}

func (w *Writer) WriteSuccess(msg string) {
	w.emit(w.Styles().Success.Render("✓ "+msg) + "\n")
}

// Clear erases the screen and homes the cursor.
func (w *Writer) Clear() {
	w.mu.Lock()
	w.inProgress = false
	w.mu.Unlock()
	w.out.Write("\x1b[2J\x1b[H")
}

// =============================================================================
// PROGRESS
// =============================================================================

// WriteProgress redraws a progress line in place. Redraws are throttled,
// except the final one at fraction 1 which also ends the line.
func (w *Writer) WriteProgress(label string, fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	done := fraction >= 1
	width := w.out.Width()

	w.mu.Lock()
	allowed := w.limiter.Allow()
	if !done && w.inProgress && !allowed {
		w.mu.Unlock()
		return
	}
	w.inProgress = !done

	barWidth := width - lipgloss.Width(label) - 8
	if barWidth < 10 {
		barWidth = 10
	}
	w.bar.Width = barWidth
	line := "\r" + label + " " + w.bar.ViewAs(fraction) + "\x1b[K"
	w.mu.Unlock()

	if done {
		line += "\n"
	}
	w.out.Write(line)
}
