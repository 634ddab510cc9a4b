// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/util"
)

// Output formats accepted by format --as.
var formats = []string{"json", "yaml", "table", "text"}

// =============================================================================
// ECHO
// =============================================================================

func echoProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "echo",
		Description: "Write the arguments",
		Usage:       "echo [--json] <words...>",
		Category:    CategoryText,
		Parameters: []commands.Parameter{
			{Name: "json", Type: commands.ParamBoolean, Description: "Write the words as a JSON array"},
		},
		Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
			if ec.Args.Bool("json") {
				words := ec.Positional
				if words == nil {
					words = []string{}
				}
				ec.Writer.WriteJSON(words)
				return nil
			}
			ec.Writer.WriteLine(ec.Text())
			return nil
		},
	})
}

// =============================================================================
// CASE
// =============================================================================

func upperProcessor() *commands.Processor {
	return caseProcessor("upper", "Convert text to upper case", func() cases.Caser { return cases.Upper(language.Und) })
}

func lowerProcessor() *commands.Processor {
	return caseProcessor("lower", "Convert text to lower case", func() cases.Caser { return cases.Lower(language.Und) })
}

func caseProcessor(name, description string, caser func() cases.Caser) *commands.Processor {
	return sealed(&commands.Processor{
		Command:     name,
		Description: description,
		Usage:       name + " <text...>",
		Category:    CategoryText,
		Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
			ec.Writer.WriteLine(caser().String(ec.Text()))
			return nil
		},
	})
}

// =============================================================================
// COUNT
// =============================================================================

// Counts is the output of count.
type Counts struct {
	Lines int `json:"lines"`
	Words int `json:"words"`
	Chars int `json:"chars"`
}

// Count tallies lines, words and characters of text.
func Count(text string) Counts {
	return Counts{
		Lines: len(util.Lines(text)),
		Words: len(strings.Fields(text)),
		Chars: utf8.RuneCountInString(text),
	}
}

func countProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "count",
		Aliases:     []string{"wc"},
		Description: "Count lines, words and characters",
		Usage:       "count <text...>",
		Category:    CategoryText,
		Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
			c := Count(ec.Text())
			ec.Writer.WriteJSON(map[string]any{"lines": c.Lines, "words": c.Words, "chars": c.Chars})
			return nil
		},
	})
}

// =============================================================================
// GREP
// =============================================================================

func grepProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "grep",
		Description: "Filter piped lines by a regular expression",
		Usage:       "<command> | grep [-i] [-v] <pattern>",
		Category:    CategoryText,
		Parameters: []commands.Parameter{
			{Name: "pattern", Type: commands.ParamString, Positional: true, Required: true, Description: "Regular expression"},
			{Name: "ignore-case", Aliases: []string{"i"}, Type: commands.ParamBoolean, Description: "Match case-insensitively"},
			{Name: "invert", Aliases: []string{"v"}, Type: commands.ParamBoolean, Description: "Keep lines that do not match"},
		},
		Handler: runGrep,
	})
}

func runGrep(_ context.Context, ec *commands.ExecutionContext) error {
	pattern := ec.Args.String("pattern", "")
	if ec.Args.Bool("ignore-case") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return commands.Exit(commands.ExitUsage, fmt.Errorf("invalid pattern: %w", err))
	}

	invert := ec.Args.Bool("invert")
	var kept []string
	for _, line := range util.Lines(ec.InputText()) {
		if re.MatchString(line) != invert {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 {
		return commands.Exit(commands.ExitFailure, nil)
	}
	ec.Writer.WriteLine(strings.Join(kept, "\n"))
	return nil
}

// =============================================================================
// FORMAT
// =============================================================================

func formatProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "format",
		Aliases:     []string{"fmt"},
		Description: "Re-render piped data",
		Usage:       "<command> | format --as json|yaml|table|text",
		Category:    CategoryText,
		Parameters: []commands.Parameter{
			{
				Name:        "as",
				Type:        commands.ParamString,
				Default:     "json",
				Description: "Output format",
				Validator:   oneOfValidator(formats),
				Values:      func() []string { return formats },
			},
		},
		Handler: runFormat,
	})
}

func runFormat(_ context.Context, ec *commands.ExecutionContext) error {
	if !ec.HasInput {
		return commands.Exit(commands.ExitUsage, errors.New("nothing to format; pipe a command into format"))
	}
	value := structured(ec.Input)

	switch ec.Args.String("as", "json") {
	case "yaml":
		data, err := yaml.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		ec.Writer.Write(string(data))
	case "table":
		rows, err := tableRows(value)
		if err != nil {
			return err
		}
		ec.Writer.WriteObjects(rows)
	case "text":
		ec.Writer.WriteLine(commands.Stringify(value))
	default:
		ec.Writer.WriteJSON(value)
	}
	return nil
}

// structured decodes JSON text so it can be re-rendered; anything else is
// returned unchanged.
func structured(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	var decoded any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &decoded); err == nil {
		return decoded
	}
	return s
}

// tableRows converts v into table rows. A map becomes key/value rows and a
// list of scalars becomes a single "value" column.
func tableRows(v any) ([]map[string]any, error) {
	switch val := v.(type) {
	case []map[string]any:
		return val, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([]map[string]any, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, map[string]any{"key": k, "value": val[k]})
		}
		return rows, nil
	case []any:
		rows := make([]map[string]any, 0, len(val))
		for _, item := range val {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
				continue
			}
			rows = append(rows, map[string]any{"value": item})
		}
		return rows, nil
	case []string:
		rows := make([]map[string]any, 0, len(val))
		for _, item := range val {
			rows = append(rows, map[string]any{"value": item})
		}
		return rows, nil
	case string:
		var rows []map[string]any
		for _, line := range util.Lines(val) {
			rows = append(rows, map[string]any{"value": line})
		}
		return rows, nil
	}
	return nil, fmt.Errorf("cannot render %T as a table", v)
}

// oneOfValidator accepts only the listed values.
func oneOfValidator(valid []string) func(any) error {
	return func(v any) error {
		s := fmt.Sprint(v)
		for _, ok := range valid {
			if s == ok {
				return nil
			}
		}
		return fmt.Errorf("must be one of: %s", strings.Join(valid, ", "))
	}
}
