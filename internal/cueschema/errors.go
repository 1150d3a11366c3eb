package cueschema

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
)

// Violation is one reason a value was rejected by a schema.
type Violation struct {
	// Field is the JSON path of the offending value, "" for the root.
	Field string
	// Actual is the rejected value, nil when the field is missing.
	Actual any
	// Expected is the schema constraint at Field in CUE syntax.
	Expected string
	Message  string
	// Code classifies the violation: required, unknown_field, type,
	// constraint or invalid.
	Code string
}

// violations expands a CUE validation error into one Violation per error.
func (c *Checker) violations(err error, data cue.Value) []Violation {
	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return []Violation{{Message: err.Error(), Code: "invalid"}}
	}

	out := make([]Violation, 0, len(cueErrors))
	seen := make(map[string]struct{})
	for _, e := range cueErrors {
		path := errors.Path(e)
		if len(path) > 0 && path[0] == rootDefinition {
			path = path[1:]
		}
		field := formatPath(path)
		msg := trimPathPrefix(strings.TrimPrefix(e.Error(), rootDefinition+"."), field)

		key := field + "\x00" + msg
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		v := Violation{Field: field, Message: msg, Code: classify(msg)}
		if sel := makePath(path); len(path) > 0 {
			if actual := data.LookupPath(sel); actual.Exists() {
				var decoded any
				if actual.Decode(&decoded) == nil {
					v.Actual = decoded
				}
			}
			if expected := c.schema.LookupPath(sel); expected.Exists() {
				v.Expected = fmt.Sprint(expected)
			}
		}
		out = append(out, v)
	}
	return out
}

// FormatError formats a CUE error with JSON path prefixes, one line per
// underlying error.
func FormatError(err error, filename string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filename, err)
	}

	lines := make([]string, 0, len(cueErrors))
	for _, e := range cueErrors {
		field := formatPath(errors.Path(e))
		msg := trimPathPrefix(e.Error(), field)
		if field != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", field, msg))
		} else {
			lines = append(lines, msg)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filename, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filename, strings.Join(lines, "\n  "))
}

// trimPathPrefix removes the "<path>:" prefix CUE sometimes repeats in the
// message itself.
func trimPathPrefix(msg, field string) string {
	if field != "" && strings.HasPrefix(msg, field) {
		msg = strings.TrimPrefix(msg, field)
		msg = strings.TrimPrefix(msg, ":")
	}
	return strings.TrimSpace(msg)
}

func classify(msg string) string {
	switch {
	case strings.Contains(msg, "incomplete value"):
		return "required"
	case strings.Contains(msg, "field not allowed"):
		return "unknown_field"
	case strings.Contains(msg, "conflicting values"), strings.Contains(msg, "mismatched types"):
		return "type"
	case strings.Contains(msg, "invalid value"):
		return "constraint"
	default:
		return "invalid"
	}
}

// formatPath converts a CUE error path (["items", "0", "name"]) to JSON-path
// notation ("items[0].name").
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if isIndex(part) && i > 0 {
			b.WriteString("[")
			b.WriteString(part)
			b.WriteString("]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(unquote(part))
	}
	return b.String()
}

func makePath(path []string) cue.Path {
	sels := make([]cue.Selector, 0, len(path))
	for i, part := range path {
		if i > 0 && isIndex(part) {
			n, _ := strconv.Atoi(part)
			sels = append(sels, cue.Index(n))
			continue
		}
		sels = append(sels, cue.Str(unquote(part)))
	}
	return cue.MakePath(sels...)
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	for _, c := range part {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func unquote(part string) string {
	if strings.HasPrefix(part, `"`) {
		if s, err := strconv.Unquote(part); err == nil {
			return s
		}
	}
	return part
}
