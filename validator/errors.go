package validator

import (
	"fmt"
	"strings"
)

// ValidationError describes one way in which an instance fails a schema.
// It is a plain data value, not a Go error: validation failures are expected
// outcomes reported to callers, while Go errors are reserved for operational
// faults such as failed reference resolution.
type ValidationError struct {
	// Message is a human-readable description of the failure.
	Message string

	// Path locates the failing value within the instance. Elements are
	// strings for object keys and ints for array indices; an empty path
	// means the instance root.
	Path []any

	// SchemaPath locates the violated keyword within the schema, using the
	// same element convention as Path.
	SchemaPath []any

	// Value is the instance fragment that failed validation.
	Value any

	// Context carries sub-errors for combinator keywords such as oneOf,
	// one group per failing branch. Empty for simple keyword failures.
	Context []*ValidationError
}

// String renders the error as "message at $.path" for human consumption.
func (e *ValidationError) String() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s at %s", e.Message, JSONPath(e.Path))
}

// JSONPath renders an instance or schema path in JSONPath-like notation,
// e.g. []any{"pets", 0, "name"} becomes "$.pets[0].name".
func JSONPath(path []any) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, elem := range path {
		switch v := elem.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		default:
			fmt.Fprintf(&b, ".%v", v)
		}
	}
	return b.String()
}

// prependPath returns a new slice with elem ahead of path. The input slice
// is never mutated so errors yielded from a restartable sequence stay
// consistent across replays.
func prependPath(path []any, elem any) []any {
	out := make([]any, 0, len(path)+1)
	out = append(out, elem)
	return append(out, path...)
}
