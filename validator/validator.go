package validator

import (
	"iter"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
)

// KeywordFunc validates an instance against a single schema keyword.
// value is the keyword's value in the schema, instance is the runtime value
// under validation, and schema is the full subschema containing the keyword
// (handlers such as "required" need sibling keywords). An empty result means
// the keyword is satisfied. Handlers are pure functions of their inputs.
type KeywordFunc func(v *Validator, value, instance any, schema map[string]any) []*ValidationError

// Registry maps a keyword name to its handler. A registry is built once per
// validator configuration and treated as immutable afterwards.
type Registry map[string]KeywordFunc

// Extend returns a copy of the registry with the given overrides installed,
// leaving the receiver unchanged. Override handlers replace base handlers
// with the same keyword name; new keywords are added.
func (r Registry) Extend(overrides Registry) Registry {
	extended := make(Registry, len(r)+len(overrides))
	for k, fn := range r {
		extended[k] = fn
	}
	for k, fn := range overrides {
		extended[k] = fn
	}
	return extended
}

// Validator binds a keyword registry to a schema root. It is created once
// per schema version and is safe for unrestricted concurrent use: validation
// performs no I/O and mutates no shared state beyond an internal compiled
// regex cache.
type Validator struct {
	registry Registry
	schema   map[string]any

	// patternCache caches compiled regex patterns (sync.Map[string, *regexp.Regexp])
	patternCache sync.Map

	// patternCount tracks the approximate number of cached patterns for size capping
	patternCount atomic.Int32
}

// New creates a Validator for the given schema using the baseline Draft-4
// keyword registry. Use NewRequestValidator or NewResponseValidator for the
// OpenAPI request/response configurations.
func New(schema map[string]any) *Validator {
	return NewWithRegistry(schema, Draft4Registry())
}

// NewWithRegistry creates a Validator with an explicit keyword registry.
func NewWithRegistry(schema map[string]any, registry Registry) *Validator {
	return &Validator{
		registry: registry,
		schema:   schema,
	}
}

// HasKeyword reports whether the validator's registry installs a handler for
// the given keyword. The required-property exemption for read-only and
// write-only properties is driven by this: absence of a property is only
// tolerated when the active configuration enforces the corresponding
// keyword.
func (v *Validator) HasKeyword(name string) bool {
	_, ok := v.registry[name]
	return ok
}

// IterErrors lazily yields every way in which instance fails the bound
// schema. The sequence is finite and restartable; an empty sequence means
// the instance is valid. Keywords are dispatched in sorted name order so
// error output is deterministic.
func (v *Validator) IterErrors(instance any) iter.Seq[*ValidationError] {
	return v.iterErrors(instance, v.schema)
}

// Validate collects all validation errors for instance. An empty (nil)
// result means the instance is valid.
func (v *Validator) Validate(instance any) []*ValidationError {
	var errs []*ValidationError
	for err := range v.IterErrors(instance) {
		errs = append(errs, err)
	}
	return errs
}

// IsValid reports whether instance satisfies the bound schema, stopping at
// the first error.
func (v *Validator) IsValid(instance any) bool {
	for range v.IterErrors(instance) {
		return false
	}
	return true
}

// Descend validates instance against a subschema, prepending path to each
// error's instance path and schemaPath to each error's schema path. Either
// may be nil to leave the corresponding path untouched. Sub-validation is
// exhaustive: all errors are collected, not just the first.
func (v *Validator) Descend(instance any, subschema map[string]any, path, schemaPath any) []*ValidationError {
	var errs []*ValidationError
	for err := range v.iterErrors(instance, subschema) {
		if path != nil {
			err.Path = prependPath(err.Path, path)
		}
		if schemaPath != nil {
			err.SchemaPath = prependPath(err.SchemaPath, schemaPath)
		}
		errs = append(errs, err)
	}
	return errs
}

// iterErrors dispatches each schema keyword present to its registered
// handler, lazily.
func (v *Validator) iterErrors(instance any, schema map[string]any) iter.Seq[*ValidationError] {
	return func(yield func(*ValidationError) bool) {
		keywords := make([]string, 0, len(schema))
		for k := range schema {
			if _, ok := v.registry[k]; ok {
				keywords = append(keywords, k)
			}
		}
		sort.Strings(keywords)

		for _, k := range keywords {
			handler := v.registry[k]
			for _, err := range handler(v, schema[k], instance, schema) {
				if err == nil {
					continue
				}
				err.SchemaPath = prependPath(err.SchemaPath, k)
				if err.Value == nil {
					err.Value = instance
				}
				if !yield(err) {
					return
				}
			}
		}
	}
}

// maxPatternCacheSize is the upper bound on cached compiled regex patterns.
// When exceeded, the cache is cleared to prevent unbounded memory growth
// from schemas with many unique patterns.
const maxPatternCacheSize = 1000

// matchPattern compiles and matches a regex pattern, caching compilations.
func (v *Validator) matchPattern(pattern, s string) (bool, error) {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(s), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}

	// The count check and clear are not atomic; under high concurrency
	// multiple goroutines may clear simultaneously. Acceptable because the
	// cache is a performance optimization, worst case is recompilation.
	if v.patternCount.Add(1) > maxPatternCacheSize {
		v.patternCache.Range(func(key, _ any) bool {
			v.patternCache.Delete(key)
			return true
		})
		v.patternCount.Store(1)
	}
	v.patternCache.Store(pattern, re)
	return re.MatchString(s), nil
}
