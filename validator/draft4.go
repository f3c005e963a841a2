package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/minet/connexion/internal/jsonutil"
)

// Draft4Registry returns the baseline JSON-Schema Draft-4 keyword registry.
// The Request and Response configurations are built by extending this
// registry with the OpenAPI-specific handlers; see RequestRegistry and
// ResponseRegistry.
func Draft4Registry() Registry {
	return Registry{
		"type":                 draft4Type,
		"enum":                 draft4Enum,
		"required":             draft4Required,
		"properties":           draft4Properties,
		"items":                draft4Items,
		"additionalProperties": draft4AdditionalProperties,
		"allOf":                draft4AllOf,
		"anyOf":                draft4AnyOf,
		"oneOf":                draft4OneOf,
		"not":                  draft4Not,
		"minimum":              draft4Minimum,
		"maximum":              draft4Maximum,
		"minLength":            draft4MinLength,
		"maxLength":            draft4MaxLength,
		"pattern":              draft4Pattern,
		"multipleOf":           draft4MultipleOf,
		"minItems":             draft4MinItems,
		"maxItems":             draft4MaxItems,
		"uniqueItems":          draft4UniqueItems,
		"minProperties":        draft4MinProperties,
		"maxProperties":        draft4MaxProperties,
		"format":               draft4Format,
	}
}

// typeErrors implements the core type check shared by the Draft-4 and
// OpenAPI "type" handlers. The declared value may be a scalar or a list.
func typeErrors(value, instance any) []*ValidationError {
	types := typeNames(value)
	if len(types) == 0 {
		// No type declared, any type is valid.
		return nil
	}

	dataType := jsonutil.TypeOf(instance)
	for _, schemaType := range types {
		if jsonutil.TypeMatches(dataType, schemaType) {
			// JSON has a single number type: a float64 may satisfy
			// "integer" only when it has no fractional part.
			if schemaType == "integer" && dataType == "number" {
				if f, ok := instance.(float64); ok && f != float64(int64(f)) {
					return []*ValidationError{{
						Message: fmt.Sprintf("%v is not of type %q", f, "integer"),
					}}
				}
			}
			return nil
		}
	}

	return []*ValidationError{{
		Message: fmt.Sprintf("%s is not of type %s", repr(instance), quotedJoin(types, " or ")),
	}}
}

// enumErrors implements the membership check shared by the Draft-4 and
// OpenAPI "enum" handlers.
func enumErrors(value, instance any) []*ValidationError {
	enums, ok := value.([]any)
	if !ok {
		return nil
	}
	for _, allowed := range enums {
		if reflect.DeepEqual(instance, allowed) {
			return nil
		}
	}
	return []*ValidationError{{
		Message: fmt.Sprintf("%s is not one of %s", repr(instance), repr(enums)),
	}}
}

// oneOfErrors implements the exactly-one combinator shared by the Draft-4
// and OpenAPI "oneOf" handlers. All subschemas are tested in a single pass,
// collecting every match, then the result branches on the match count:
// zero matches errors with all sub-errors as context, more than one match
// errors listing every matching subschema.
func oneOfErrors(v *Validator, value, instance any) []*ValidationError {
	subschemas, ok := value.([]any)
	if !ok {
		return nil
	}

	var all []*ValidationError
	var matched []any
	for i, raw := range subschemas {
		sub, ok := asSchema(raw)
		if !ok {
			continue
		}
		errs := v.Descend(instance, sub, nil, i)
		if len(errs) == 0 {
			matched = append(matched, sub)
		} else {
			all = append(all, errs...)
		}
	}

	switch {
	case len(matched) == 0:
		return []*ValidationError{{
			Message: fmt.Sprintf("%s is not valid under any of the given schemas", repr(instance)),
			Context: all,
		}}
	case len(matched) > 1:
		reprs := make([]string, len(matched))
		for i, s := range matched {
			reprs[i] = repr(s)
		}
		return []*ValidationError{{
			Message: fmt.Sprintf("%s is valid under each of %s", repr(instance), strings.Join(reprs, ", ")),
		}}
	}
	return nil
}

// schemaSatisfied reports whether instance is valid under schema, stopping
// at the first error.
func schemaSatisfied(v *Validator, instance any, schema map[string]any) bool {
	for range v.iterErrors(instance, schema) {
		return false
	}
	return true
}

func draft4Type(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	return typeErrors(value, instance)
}

func draft4Enum(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	return enumErrors(value, instance)
}

func draft4Required(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	obj, ok := instance.(map[string]any)
	if !ok {
		return nil
	}
	names, ok := value.([]any)
	if !ok {
		return nil
	}

	var errs []*ValidationError
	for _, n := range names {
		name, ok := n.(string)
		if !ok {
			continue
		}
		if _, present := obj[name]; !present {
			errs = append(errs, &ValidationError{
				Message: fmt.Sprintf("%q is a required property", name),
			})
		}
	}
	return errs
}

func draft4Properties(v *Validator, value, instance any, _ map[string]any) []*ValidationError {
	props, ok := asSchema(value)
	if !ok {
		return nil
	}
	obj, ok := instance.(map[string]any)
	if !ok {
		return nil
	}

	var errs []*ValidationError
	for _, name := range sortedKeys(props) {
		val, present := obj[name]
		if !present {
			continue
		}
		sub, ok := asSchema(props[name])
		if !ok {
			continue
		}
		errs = append(errs, v.Descend(val, sub, name, name)...)
	}
	return errs
}

func draft4Items(v *Validator, value, instance any, _ map[string]any) []*ValidationError {
	arr, ok := instance.([]any)
	if !ok {
		return nil
	}

	var errs []*ValidationError
	switch items := value.(type) {
	case map[string]any:
		for i, item := range arr {
			errs = append(errs, v.Descend(item, items, i, nil)...)
		}
	case []any:
		// Tuple form: each position has its own subschema.
		for i := 0; i < len(arr) && i < len(items); i++ {
			sub, ok := asSchema(items[i])
			if !ok {
				continue
			}
			errs = append(errs, v.Descend(arr[i], sub, i, i)...)
		}
	}
	return errs
}

func draft4AdditionalProperties(v *Validator, value, instance any, schema map[string]any) []*ValidationError {
	obj, ok := instance.(map[string]any)
	if !ok {
		return nil
	}
	declared, _ := schema["properties"].(map[string]any)

	var errs []*ValidationError
	switch ap := value.(type) {
	case bool:
		if ap {
			return nil
		}
		for _, name := range sortedKeys(obj) {
			if _, ok := declared[name]; !ok {
				errs = append(errs, &ValidationError{
					Message: fmt.Sprintf("additional property %q is not allowed", name),
					Path:    []any{name},
					Value:   obj[name],
				})
			}
		}
	case map[string]any:
		for _, name := range sortedKeys(obj) {
			if _, ok := declared[name]; !ok {
				errs = append(errs, v.Descend(obj[name], ap, name, nil)...)
			}
		}
	}
	return errs
}

func draft4AllOf(v *Validator, value, instance any, _ map[string]any) []*ValidationError {
	subschemas, ok := value.([]any)
	if !ok {
		return nil
	}
	var errs []*ValidationError
	for i, raw := range subschemas {
		sub, ok := asSchema(raw)
		if !ok {
			continue
		}
		errs = append(errs, v.Descend(instance, sub, nil, i)...)
	}
	return errs
}

func draft4AnyOf(v *Validator, value, instance any, _ map[string]any) []*ValidationError {
	subschemas, ok := value.([]any)
	if !ok {
		return nil
	}
	var all []*ValidationError
	for i, raw := range subschemas {
		sub, ok := asSchema(raw)
		if !ok {
			continue
		}
		errs := v.Descend(instance, sub, nil, i)
		if len(errs) == 0 {
			return nil
		}
		all = append(all, errs...)
	}
	return []*ValidationError{{
		Message: fmt.Sprintf("%s is not valid under any of the given schemas", repr(instance)),
		Context: all,
	}}
}

func draft4OneOf(v *Validator, value, instance any, _ map[string]any) []*ValidationError {
	return oneOfErrors(v, value, instance)
}

func draft4Not(v *Validator, value, instance any, _ map[string]any) []*ValidationError {
	sub, ok := asSchema(value)
	if !ok {
		return nil
	}
	if schemaSatisfied(v, instance, sub) {
		return []*ValidationError{{
			Message: fmt.Sprintf("%s is not allowed for %s", repr(sub), repr(instance)),
		}}
	}
	return nil
}

func draft4Minimum(_ *Validator, value, instance any, schema map[string]any) []*ValidationError {
	n, ok := jsonutil.ToFloat64(instance)
	if !ok {
		return nil
	}
	bound, ok := jsonutil.ToFloat64(value)
	if !ok {
		return nil
	}

	excl, _ := schema["exclusiveMinimum"].(bool)
	if excl && n <= bound {
		return []*ValidationError{{
			Message: fmt.Sprintf("%v is less than or equal to the exclusive minimum of %v", n, bound),
		}}
	}
	if !excl && n < bound {
		return []*ValidationError{{
			Message: fmt.Sprintf("%v is less than the minimum of %v", n, bound),
		}}
	}
	return nil
}

func draft4Maximum(_ *Validator, value, instance any, schema map[string]any) []*ValidationError {
	n, ok := jsonutil.ToFloat64(instance)
	if !ok {
		return nil
	}
	bound, ok := jsonutil.ToFloat64(value)
	if !ok {
		return nil
	}

	excl, _ := schema["exclusiveMaximum"].(bool)
	if excl && n >= bound {
		return []*ValidationError{{
			Message: fmt.Sprintf("%v is greater than or equal to the exclusive maximum of %v", n, bound),
		}}
	}
	if !excl && n > bound {
		return []*ValidationError{{
			Message: fmt.Sprintf("%v is greater than the maximum of %v", n, bound),
		}}
	}
	return nil
}

func draft4MinLength(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	s, ok := instance.(string)
	if !ok {
		return nil
	}
	bound, ok := jsonutil.ToFloat64(value)
	if !ok {
		return nil
	}
	if len(s) < int(bound) {
		return []*ValidationError{{
			Message: fmt.Sprintf("string length %d is less than minimum %d", len(s), int(bound)),
		}}
	}
	return nil
}

func draft4MaxLength(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	s, ok := instance.(string)
	if !ok {
		return nil
	}
	bound, ok := jsonutil.ToFloat64(value)
	if !ok {
		return nil
	}
	if len(s) > int(bound) {
		return []*ValidationError{{
			Message: fmt.Sprintf("string length %d exceeds maximum %d", len(s), int(bound)),
		}}
	}
	return nil
}

func draft4Pattern(v *Validator, value, instance any, _ map[string]any) []*ValidationError {
	s, ok := instance.(string)
	if !ok {
		return nil
	}
	pattern, ok := value.(string)
	if !ok {
		return nil
	}

	matched, err := v.matchPattern(pattern, s)
	if err != nil {
		return []*ValidationError{{
			Message: fmt.Sprintf("invalid pattern %q: %v", pattern, err),
		}}
	}
	if !matched {
		return []*ValidationError{{
			Message: fmt.Sprintf("string does not match pattern %q", pattern),
		}}
	}
	return nil
}

func draft4MultipleOf(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	n, ok := jsonutil.ToFloat64(instance)
	if !ok {
		return nil
	}
	m, ok := jsonutil.ToFloat64(value)
	if !ok || m == 0 {
		return nil
	}

	// Division with an integrality check tolerates floating point better
	// than math.Mod for typical schema divisors.
	quotient := n / m
	if quotient != float64(int64(quotient)) {
		return []*ValidationError{{
			Message: fmt.Sprintf("%v is not a multiple of %v", n, m),
		}}
	}
	return nil
}

func draft4MinItems(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	arr, ok := instance.([]any)
	if !ok {
		return nil
	}
	bound, ok := jsonutil.ToFloat64(value)
	if !ok {
		return nil
	}
	if len(arr) < int(bound) {
		return []*ValidationError{{
			Message: fmt.Sprintf("array has %d items, minimum is %d", len(arr), int(bound)),
		}}
	}
	return nil
}

func draft4MaxItems(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	arr, ok := instance.([]any)
	if !ok {
		return nil
	}
	bound, ok := jsonutil.ToFloat64(value)
	if !ok {
		return nil
	}
	if len(arr) > int(bound) {
		return []*ValidationError{{
			Message: fmt.Sprintf("array has %d items, maximum is %d", len(arr), int(bound)),
		}}
	}
	return nil
}

func draft4UniqueItems(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	unique, ok := value.(bool)
	if !ok || !unique {
		return nil
	}
	arr, ok := instance.([]any)
	if !ok {
		return nil
	}
	if hasDuplicates(arr) {
		return []*ValidationError{{
			Message: "array items must be unique",
		}}
	}
	return nil
}

func draft4MinProperties(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	obj, ok := instance.(map[string]any)
	if !ok {
		return nil
	}
	bound, ok := jsonutil.ToFloat64(value)
	if !ok {
		return nil
	}
	if len(obj) < int(bound) {
		return []*ValidationError{{
			Message: fmt.Sprintf("object has %d properties, minimum is %d", len(obj), int(bound)),
		}}
	}
	return nil
}

func draft4MaxProperties(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	obj, ok := instance.(map[string]any)
	if !ok {
		return nil
	}
	bound, ok := jsonutil.ToFloat64(value)
	if !ok {
		return nil
	}
	if len(obj) > int(bound) {
		return []*ValidationError{{
			Message: fmt.Sprintf("object has %d properties, maximum is %d", len(obj), int(bound)),
		}}
	}
	return nil
}

func draft4Format(_ *Validator, value, instance any, _ map[string]any) []*ValidationError {
	s, ok := instance.(string)
	if !ok {
		return nil
	}
	format, ok := value.(string)
	if !ok {
		return nil
	}

	valid := true
	switch format {
	case "email":
		valid = isValidEmail(s)
	case "uri", "uri-reference":
		valid = isValidURI(s)
	case "date":
		valid = isValidDate(s)
	case "date-time":
		valid = isValidDateTime(s)
	case "uuid":
		valid = isValidUUID(s)
	default:
		// Unknown formats pass.
		return nil
	}

	if !valid {
		return []*ValidationError{{
			Message: fmt.Sprintf("%q is not a valid %s", s, format),
		}}
	}
	return nil
}
