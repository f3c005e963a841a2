// Package validator implements a keyword-dispatch schema validation engine
// with OpenAPI extensions layered over baseline JSON-Schema Draft-4
// semantics.
//
// A Validator binds a keyword Registry to a schema root. Two named
// configurations cover the two directions of API data flow:
//
//   - NewRequestValidator: inbound payloads. Rejects read-only properties
//     supplied by clients and tolerates their absence under "required".
//   - NewResponseValidator: outbound payloads. Rejects write-only
//     properties echoed back to clients and tolerates their absence under
//     "required".
//
// Both understand the nullable / x-nullable markers: null is always valid
// under a nullable schema regardless of declared type or enum, and
// writeOnly / x-writeOnly are accepted interchangeably.
//
// Validation failure is data, not an error. IterErrors yields a lazy,
// finite, restartable sequence of *ValidationError records; an empty
// sequence means the instance is valid. Combinator keywords (oneOf, anyOf)
// aggregate child errors as Context rather than short-circuiting, so
// callers see the full failure tree.
//
// # Basic Usage
//
//	schema := map[string]any{
//	    "type":     "object",
//	    "required": []any{"name"},
//	    "properties": map[string]any{
//	        "name": map[string]any{"type": "string"},
//	        "id":   map[string]any{"type": "integer", "readOnly": true},
//	    },
//	}
//
//	v := validator.NewRequestValidator(schema)
//	for _, err := range v.Validate(payload) {
//	    log.Printf("%s", err)
//	}
//
// Schemas are expected to be fully dereferenced first (see the jsonref
// package); the engine does not follow $ref nodes.
//
// # Concurrency
//
// Validation performs no I/O and is pure CPU-bound recursion. A Validator
// is read-only after construction and safe for unrestricted concurrent use.
package validator
