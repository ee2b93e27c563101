// SPDX-License-Identifier: MIT

// Package normalize coerces loosely-typed backend payloads into stable Go
// values. The backend emits snake_case JSON with optional fields, numbers as
// strings and booleans as 0/1; every helper here is total: missing or
// mistyped fields resolve to the supplied default, never to a panic.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Raw is a decoded backend JSON object.
type Raw = map[string]any

// pick returns the first present key. Both snake_case and camelCase spellings
// are accepted because legacy payloads still use either.
func pick(m Raw, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Str returns the first present key as a string, or "".
func Str(m Raw, keys ...string) string {
	return StrOr(m, "", keys...)
}

// StrOr returns the first present key as a string, or def.
func StrOr(m Raw, def string, keys ...string) string {
	v, ok := pick(m, keys...)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return def
		}
		return t
	case json.Number:
		return t.String()
	case float64:
		return trimFloat(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return def
	}
}

// ID renders an identifier that the backend may send as a string or number.
func ID(m Raw, keys ...string) string {
	return Str(m, keys...)
}

// Int coerces numeric-looking fields received as numbers, strings or nothing.
func Int(m Raw, def int, keys ...string) int {
	v, ok := pick(m, keys...)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int(f)
		}
	case bool:
		if t {
			return 1
		}
		return 0
	}
	return def
}

// Float coerces like Int but keeps the fraction.
func Float(m Raw, def float64, keys ...string) float64 {
	v, ok := pick(m, keys...)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return def
}

// Bool coerces truthy backend values: booleans, 0/1 and "true"/"false".
func Bool(m Raw, def bool, keys ...string) bool {
	v, ok := pick(m, keys...)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		return t.String() != "0"
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off", "":
			return false
		}
	}
	return def
}

// Map returns a nested object, or an empty map when absent or mistyped.
func Map(m Raw, keys ...string) Raw {
	if v, ok := pick(m, keys...); ok {
		if nested, ok := v.(map[string]any); ok {
			return nested
		}
	}
	return Raw{}
}

// Slice returns a nested array of objects, dropping non-object elements.
func Slice(m Raw, keys ...string) []Raw {
	v, ok := pick(m, keys...)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Raw, 0, len(arr))
	for _, el := range arr {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Strings returns a nested array coerced to strings, dropping empties.
func Strings(m Raw, keys ...string) []string {
	v, ok := pick(m, keys...)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		switch t := el.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case float64:
			out = append(out, trimFloat(t))
		}
	}
	return out
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
