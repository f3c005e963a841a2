package validator

import "fmt"

// IsNullable reports whether a schema marks itself nullable, via either the
// standard nullable flag or the x-nullable vendor extension. Null is always
// valid under a nullable schema regardless of declared type or enum.
func IsNullable(schema map[string]any) bool {
	if b, ok := schema["nullable"].(bool); ok && b {
		return true
	}
	if b, ok := schema["x-nullable"].(bool); ok && b {
		return true
	}
	return false
}

// RequestRegistry returns the keyword registry for validating inbound
// request payloads: the Draft-4 baseline extended with nullable-aware type
// and enum checks, read-only/write-only-aware required handling, rejection
// of read-only properties supplied by clients, exactly-one oneOf, and
// merge-style allOf.
func RequestRegistry() Registry {
	return Draft4Registry().Extend(Registry{
		"type":     openapiType,
		"enum":     openapiEnum,
		"required": openapiRequired,
		"readOnly": openapiReadOnly,
		"oneOf":    openapiOneOf,
		"allOf":    openapiAllOf,
	})
}

// ResponseRegistry returns the keyword registry for validating outbound
// response payloads: the Draft-4 baseline extended with nullable-aware type,
// enum, and properties checks, read-only/write-only-aware required handling,
// rejection of write-only properties echoed in responses, and exactly-one
// oneOf.
func ResponseRegistry() Registry {
	return Draft4Registry().Extend(Registry{
		"type":        openapiType,
		"enum":        openapiEnum,
		"required":    openapiRequired,
		"writeOnly":   openapiWriteOnly,
		"x-writeOnly": openapiWriteOnly,
		"properties":  openapiProperties,
		"oneOf":       openapiOneOf,
	})
}

// NewRequestValidator creates a Validator configured for inbound request
// payloads bound to the given (normally pre-resolved) schema.
func NewRequestValidator(schema map[string]any) *Validator {
	return NewWithRegistry(schema, RequestRegistry())
}

// NewResponseValidator creates a Validator configured for outbound response
// payloads bound to the given (normally pre-resolved) schema.
func NewResponseValidator(schema map[string]any) *Validator {
	return NewWithRegistry(schema, ResponseRegistry())
}

// ValidateRequest validates an inbound payload against schema, returning
// all validation errors. Convenience for one-off checks; for validating
// many payloads against one schema, create a NewRequestValidator once and
// reuse it.
func ValidateRequest(schema map[string]any, instance any) []*ValidationError {
	return NewRequestValidator(schema).Validate(instance)
}

// ValidateResponse validates an outbound payload against schema, returning
// all validation errors.
func ValidateResponse(schema map[string]any, instance any) []*ValidationError {
	return NewResponseValidator(schema).Validate(instance)
}

// openapiType checks the declared type(s), skipping entirely when the
// instance is null and the schema is nullable.
func openapiType(_ *Validator, value, instance any, schema map[string]any) []*ValidationError {
	if instance == nil && IsNullable(schema) {
		return nil
	}
	return typeErrors(value, instance)
}

// openapiEnum checks enum membership with the same nullable short-circuit
// as openapiType.
func openapiEnum(_ *Validator, value, instance any, schema map[string]any) []*ValidationError {
	if instance == nil && IsNullable(schema) {
		return nil
	}
	return enumErrors(value, instance)
}

// openapiRequired enforces required properties, tolerating the absence of
// properties marked read-only or write-only when the active configuration
// registers the corresponding keyword. A read-only property is populated by
// the server, so a request may omit it; a write-only property is accepted
// only in requests, so a response may omit it.
func openapiRequired(v *Validator, value, instance any, schema map[string]any) []*ValidationError {
	obj, ok := instance.(map[string]any)
	if !ok {
		return nil
	}
	names, ok := value.([]any)
	if !ok {
		return nil
	}
	properties, _ := schema["properties"].(map[string]any)

	var errs []*ValidationError
	for _, n := range names {
		name, ok := n.(string)
		if !ok {
			continue
		}
		if _, present := obj[name]; present {
			continue
		}
		if sub, ok := properties[name].(map[string]any); ok {
			if v.HasKeyword("readOnly") && flagSet(sub, "readOnly") {
				continue
			}
			if v.HasKeyword("writeOnly") && flagSet(sub, "writeOnly") {
				continue
			}
			if v.HasKeyword("x-writeOnly") && flagSet(sub, "x-writeOnly") {
				continue
			}
		}
		errs = append(errs, &ValidationError{
			Message: fmt.Sprintf("%q is a required property", name),
		})
	}
	return errs
}

// openapiReadOnly rejects read-only properties supplied in a request.
// The handler fires when validation descends into a property subschema
// carrying readOnly, which only happens for properties present in the
// instance; presence is exactly the violation.
func openapiReadOnly(_ *Validator, value, _ any, _ map[string]any) []*ValidationError {
	if !isTrue(value) {
		return nil
	}
	return []*ValidationError{{Message: "property is read-only"}}
}

// openapiWriteOnly rejects write-only properties echoed in a response,
// symmetric to openapiReadOnly. Handles both writeOnly and the x-writeOnly
// vendor extension.
func openapiWriteOnly(_ *Validator, value, _ any, _ map[string]any) []*ValidationError {
	if !isTrue(value) {
		return nil
	}
	return []*ValidationError{{Message: "property is write-only"}}
}

// openapiOneOf applies the nullable short-circuit, then requires the
// instance to match exactly one subschema.
func openapiOneOf(v *Validator, value, instance any, schema map[string]any) []*ValidationError {
	if instance == nil && IsNullable(schema) {
		return nil
	}
	return oneOfErrors(v, value, instance)
}

// openapiAllOf merges all subschemas' keyword sets into one cumulative
// schema, later subschemas' keys overwriting earlier ones with the same
// name. The merge is shallow, not a deep union: a "properties" mapping in a
// later subschema replaces the earlier mapping wholesale. The instance then
// descends into the merged schema.
func openapiAllOf(v *Validator, value, instance any, _ map[string]any) []*ValidationError {
	subschemas, ok := value.([]any)
	if !ok {
		return nil
	}

	merged := make(map[string]any)
	for _, raw := range subschemas {
		sub, ok := asSchema(raw)
		if !ok {
			continue
		}
		for k, val := range sub {
			merged[k] = val
		}
	}
	return v.Descend(instance, merged, nil, nil)
}

// openapiProperties validates declared properties present in the instance,
// with the nullable short-circuit. Validation is exhaustive across sibling
// properties; it does not stop at the first nested failure.
func openapiProperties(v *Validator, value, instance any, schema map[string]any) []*ValidationError {
	if instance == nil && IsNullable(schema) {
		return nil
	}
	return draft4Properties(v, value, instance, schema)
}

// flagSet reports whether a schema flag such as readOnly holds true.
func flagSet(schema map[string]any, name string) bool {
	b, ok := schema[name].(bool)
	return ok && b
}

// isTrue reports whether a keyword value is boolean true.
func isTrue(value any) bool {
	b, ok := value.(bool)
	return ok && b
}
