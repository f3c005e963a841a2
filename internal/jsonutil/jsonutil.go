// Package jsonutil provides helpers for working with untyped JSON-compatible
// trees (map[string]any, []any, and scalars) as produced by YAML/JSON
// unmarshaling.
package jsonutil

import (
	"reflect"
	"strconv"
	"strings"
)

// DeepCopy recursively deep copies any JSON-compatible value.
// Maps and slices are copied structurally; scalars copy by value.
func DeepCopy(v any) any {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case string, bool, float64, int, int64, float32, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return t // Primitives copy by value
	case []any:
		cp := make([]any, len(t))
		for i, item := range t {
			cp[i] = DeepCopy(item)
		}
		return cp
	case map[string]any:
		cp := make(map[string]any, len(t))
		for k, item := range t {
			cp[k] = DeepCopy(item)
		}
		return cp
	default:
		// Unknown type - could be custom types in extensions
		// Return as-is (shallow copy)
		return v
	}
}

// TypeOf returns the JSON Schema type name of a Go value.
func TypeOf(data any) string {
	if data == nil {
		return "null"
	}

	switch data.(type) {
	case string:
		return "string"
	case float64, float32:
		return "number"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		rv := reflect.ValueOf(data)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			return "array"
		case reflect.Map:
			return "object"
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return "integer"
		case reflect.Float32, reflect.Float64:
			return "number"
		case reflect.String:
			return "string"
		case reflect.Bool:
			return "boolean"
		}
		return "unknown"
	}
}

// TypeMatches checks if a data type name matches a schema type name.
func TypeMatches(dataType, schemaType string) bool {
	if dataType == schemaType {
		return true
	}
	// "integer" is a subset of "number"
	if schemaType == "number" && dataType == "integer" {
		return true
	}
	// JSON has a single number type, so whole-valued numbers may satisfy
	// "integer". Callers must check the fractional part separately.
	if schemaType == "integer" && dataType == "number" {
		return true
	}
	return false
}

// ToFloat64 converts numeric types to float64.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// EnsureList normalizes a scalar-or-list value to a list.
// A nil value yields nil; a []any is returned as-is; anything else is
// wrapped in a single-element slice.
func EnsureList(v any) []any {
	if v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// UnescapeToken unescapes a JSON Pointer token.
// Per RFC 6901, ~1 represents / and ~0 represents ~.
func UnescapeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}

// DeepGet traverses a JSON-compatible tree along the given path tokens.
// Maps are traversed by key, sequences by RFC 6901 array index. The boolean
// result reports whether the full path exists.
func DeepGet(root any, path []string) (any, bool) {
	current := root
	for _, part := range path {
		part = UnescapeToken(part)

		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, false
			}
			current = next

		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(v) {
				return nil, false
			}
			current = v[index]

		default:
			return nil, false
		}
	}
	return current, true
}
