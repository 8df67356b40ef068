package cckm

import (
	"fmt"
	"strconv"
)

// ArgList builds a ksctl argument list incrementally. Positional tokens are
// appended before flags, and flags appear in the exact order declared by
// the builder — never map-iteration order — because some ksctl subcommands
// are positionally sensitive within variadic flag groups.
//
// A missing required parameter is recorded and surfaced from Build; it is
// the last line of defense behind the registry's own validation pass.
type ArgList struct {
	args []string
	err  error
}

// NewArgList starts an argument list with the given positional tokens.
func NewArgList(tokens ...string) *ArgList {
	return &ArgList{args: append([]string(nil), tokens...)}
}

// Add appends literal tokens.
func (a *ArgList) Add(tokens ...string) *ArgList {
	a.args = append(a.args, tokens...)
	return a
}

// Required appends "--flag value" from params[key], recording an error if
// the key is absent.
func (a *ArgList) Required(params map[string]any, key, flag string) *ArgList {
	v, ok := params[key]
	if !ok {
		if a.err == nil {
			a.err = fmt.Errorf("missing required parameter %q", key)
		}
		return a
	}
	a.args = append(a.args, flag, FormatValue(v))
	return a
}

// Optional appends "--flag value" only when params contains key.
func (a *ArgList) Optional(params map[string]any, key, flag string) *ArgList {
	if v, ok := params[key]; ok {
		a.args = append(a.args, flag, FormatValue(v))
	}
	return a
}

// OptionalBool appends a bare "--flag" token when params[key] is true.
// False or absent values emit nothing.
func (a *ArgList) OptionalBool(params map[string]any, key, flag string) *ArgList {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok && b {
			a.args = append(a.args, flag)
		}
	}
	return a
}

// OptionalBoolValue appends "--flag true" or "--flag false" when params
// contains key. Used by verbs whose CLI form takes an explicit boolean
// value rather than a presence token.
func (a *ArgList) OptionalBoolValue(params map[string]any, key, flag string) *ArgList {
	if v, ok := params[key]; ok {
		a.args = append(a.args, flag, FormatValue(v))
	}
	return a
}

// Build returns the finished argument list, or the first recorded error.
func (a *ArgList) Build() ([]string, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.args, nil
}

// FormatValue stringifies a parameter value for the command line with no
// locale formatting. JSON numbers arrive as float64 and are rendered
// without an exponent; booleans render lowercase.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(v)
	}
}
