// Package jsonpath extracts values from JSON documents with a subset of
// JSONPath: dotted member access, bracketed member names and array indexes,
// e.g. "$.users[0].name" or "$['data'].items[2]".
package jsonpath

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrEmptyDocument is returned when there is no JSON to query.
	ErrEmptyDocument = errors.New("empty JSON document")

	// ErrPathNotFound is returned when the path matches nothing.
	ErrPathNotFound = errors.New("path not found")
)

// Extract returns the value at path as a string. Objects and arrays are
// returned as raw JSON, null as "null".
func Extract(data []byte, path string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}

	result := gjson.GetBytes(data, toGJSONPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll extracts every named path. Values found are returned even when
// some paths fail; the error lists the failures by name.
func ExtractAll(data []byte, paths map[string]string) (map[string]string, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(paths))
	var failures []string
	for _, name := range names {
		value, err := Extract(data, paths[name])
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		results[name] = value
	}

	if len(failures) > 0 {
		return results, fmt.Errorf("extraction errors: %s", strings.Join(failures, "; "))
	}
	return results, nil
}

// toGJSONPath converts a JSONPath expression to gjson syntax:
// "$.users[0]['first name']" becomes "users.0.first name".
func toGJSONPath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}

	var segments []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				current.WriteString(path[i+1:])
				i = len(path)
				continue
			}
			inner := path[i+1 : i+end]
			inner = strings.Trim(inner, `'"`)
			segments = append(segments, escapeSegment(inner))
			i += end
		default:
			if c == '*' || c == '?' {
				current.WriteByte('\\')
			}
			current.WriteByte(c)
		}
	}
	flush()

	if len(segments) == 0 {
		return "@this"
	}
	return strings.Join(segments, ".")
}

// escapeSegment escapes gjson path metacharacters inside a bracketed name.
func escapeSegment(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '*', '?', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
