// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/termshell/internal/parser"
)

// =============================================================================
// BOUND ARGUMENTS
// =============================================================================

// BoundArgs maps parameter names and aliases to their values. A declared
// parameter is stored under its name and every alias with the same value.
type BoundArgs map[string]any

// Has reports whether name was bound.
func (b BoundArgs) Has(name string) bool {
	_, ok := b[name]
	return ok
}

// Get returns the raw value bound to name.
func (b BoundArgs) Get(name string) (any, bool) {
	v, ok := b[name]
	return v, ok
}

// String returns name as a string, or def when absent.
func (b BoundArgs) String(name, def string) string {
	v, ok := b[name]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns name as a boolean using the same truth table as binding.
func (b BoundArgs) Bool(name string) bool {
	return truthy(b[name])
}

// Int returns name as an integer, or def when absent or not numeric.
func (b BoundArgs) Int(name string, def int64) int64 {
	switch v := b[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

// Float returns name as a float, or def when absent or not numeric.
func (b BoundArgs) Float(name string, def float64) float64 {
	switch v := b[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Strings returns name as a string slice. Scalars become one-element slices.
func (b BoundArgs) Strings(name string) []string {
	switch v := b[name].(type) {
	case nil:
		return nil
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return []string{fmt.Sprint(v)}
	}
}

func (b BoundArgs) set(p Parameter, v any) {
	b[p.Name] = v
	for _, alias := range p.Aliases {
		b[alias] = v
	}
}

// =============================================================================
// BINDING
// =============================================================================

// Bind maps a parsed segment onto declared parameters.
//
// chainLen is the number of leading words consumed by processor resolution.
// A declared non-boolean flag without a value takes the next unconsumed word
// after the chain. Array parameters accumulate. Unknown flags pass through
// under their given name. Bind never fails; see Validate.
//
// It returns the bound arguments and the positional words left over.
func Bind(parsed parser.ParsedCommand, params []Parameter, chainLen int) (BoundArgs, []string) {
	bound := BoundArgs{}
	taken := make(map[int]bool)

	for i, tok := range parsed.Tokens {
		if !tok.Flag {
			continue
		}

		param, known := findParameter(params, tok.Name)
		if !known {
			bound[tok.Name] = tok.Value
			continue
		}

		value, text, hasValue := tok.Value, tok.Text, tok.HasValue
		if !hasValue && param.Type != ParamBoolean && i+1 < len(parsed.Tokens) {
			next := parsed.Tokens[i+1]
			if !next.Flag && next.WordIndex >= chainLen && !taken[next.WordIndex] {
				value, text, hasValue = parser.Coerce(next.Text), next.Text, true
				taken[next.WordIndex] = true
			}
		}

		v := convertValue(param, value, text, hasValue)
		if param.Type == ParamArray {
			prev := bound.Strings(param.Name)
			v = append(append([]string(nil), prev...), v.(string))
		}
		bound.set(param, v)
	}

	var positional []string
	for idx, word := range parsed.Words {
		if idx < chainLen || taken[idx] {
			continue
		}
		positional = append(positional, word)
	}

	bindPositional(bound, params, positional)

	for _, param := range params {
		if !bound.Has(param.Name) && param.Default != nil {
			bound.set(param, param.Default)
		}
	}

	return bound, positional
}

// bindPositional fills positional parameters, in declaration order, from the
// leftover words. An array parameter takes everything that remains.
func bindPositional(bound BoundArgs, params []Parameter, words []string) {
	next := 0
	for _, param := range params {
		if !param.Positional || next >= len(words) {
			continue
		}
		if bound.Has(param.Name) {
			continue
		}
		if param.Type == ParamArray {
			bound.set(param, append([]string(nil), words[next:]...))
			next = len(words)
			continue
		}
		word := words[next]
		next++
		bound.set(param, convertValue(param, parser.Coerce(word), word, true))
	}
}

func convertValue(p Parameter, value any, text string, hasValue bool) any {
	switch p.Type {
	case ParamBoolean:
		return truthy(value)
	case ParamNumber:
		if s, ok := value.(string); ok {
			return parser.Coerce(s)
		}
		return value
	case ParamArray:
		if hasValue {
			return text
		}
		return fmt.Sprint(value)
	default:
		if hasValue {
			return text
		}
		return value
	}
}

// truthy accepts true, "true", "1", "yes", "y" and 1.
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(val) {
		case "true", "1", "yes", "y":
			return true
		}
	case int64:
		return val == 1
	case int:
		return val == 1
	case float64:
		return val == 1
	}
	return false
}

func findParameter(params []Parameter, name string) (Parameter, bool) {
	for _, p := range params {
		if p.matches(name) {
			return p, true
		}
	}
	return Parameter{}, false
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks required parameters, numeric types and custom validators.
func Validate(command string, bound BoundArgs, params []Parameter) error {
	for _, param := range params {
		v, ok := bound[param.Name]
		if !ok {
			if param.Required {
				return &ValidationError{
					Command:  command,
					Arg:      param.Name,
					Message:  "required argument missing",
					Expected: param.Description,
				}
			}
			continue
		}

		if param.Type == ParamNumber && !isNumber(v) {
			return &ValidationError{
				Command:  command,
				Arg:      param.Name,
				Message:  "invalid value",
				Got:      fmt.Sprint(v),
				Expected: "number",
			}
		}

		if param.Validator != nil {
			if err := param.Validator(v); err != nil {
				return &ValidationError{
					Command: command,
					Arg:     param.Name,
					Message: "invalid value",
					Got:     fmt.Sprint(v),
					Err:     err,
				}
			}
		}
	}
	return nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case int64, int, float64:
		return true
	}
	return false
}
