package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// repr renders a value as compact JSON for use in error messages, falling
// back to fmt formatting for unmarshalable values.
func repr(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// typeNames normalizes a "type" keyword value (scalar or list) to a list of
// type name strings.
func typeNames(value any) []string {
	switch t := value.(type) {
	case string:
		return []string{t}
	case []any:
		names := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
		return names
	case []string:
		return t
	}
	return nil
}

// quotedJoin joins names as a quoted, separator-delimited list.
func quotedJoin(names []string, sep string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, sep)
}

// sortedKeys returns the map's keys in sorted order, for deterministic
// iteration.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// hasDuplicates checks if an array has duplicate values.
func hasDuplicates(arr []any) bool {
	seen := make(map[string]bool)
	for _, item := range arr {
		key := fmt.Sprintf("%T:%v", item, item)
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

// asSchema asserts that a keyword value is a subschema mapping.
func asSchema(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Format validation helpers

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRegex     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	dateRegex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
)

func isValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

func isValidURI(s string) bool {
	return strings.Contains(s, "://")
}

func isValidDate(s string) bool {
	return dateRegex.MatchString(s)
}

func isValidDateTime(s string) bool {
	return dateTimeRegex.MatchString(s)
}

func isValidUUID(s string) bool {
	return uuidRegex.MatchString(s)
}
