// Package cnxerrors provides structured error types for connexion.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of errors and implement appropriate recovery strategies.
//
// # Error Categories
//
//   - ResolutionError: $ref resolution failures, unreachable documents,
//     circular references, path traversal
//   - ResourceLimitError: resource exhaustion (depth, size, count limits)
//   - ConfigError: invalid configuration or input options
//
// Validation failures are deliberately NOT part of this taxonomy: a failing
// instance is an expected, common outcome, so the validator package reports
// it as ordinary data (a sequence of validator.ValidationError records)
// rather than as a Go error.
//
// # Usage with errors.Is
//
//	resolved, err := jsonref.Resolve(spec)
//	if err != nil {
//	    var resErr *cnxerrors.ResolutionError
//	    if errors.As(err, &resErr) {
//	        if resErr.IsCircular {
//	            // Handle circular reference specifically
//	        }
//	    }
//	}
package cnxerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrResolution indicates a reference resolution failure.
	ErrResolution = errors.New("resolution error")

	// ErrCircularReference indicates a circular $ref was detected.
	ErrCircularReference = errors.New("circular reference")

	// ErrBrokenLocalReference indicates a local $ref whose pointer does not
	// exist in the document.
	ErrBrokenLocalReference = errors.New("broken local reference")

	// ErrUnsupportedScheme indicates a $ref URI scheme with no registered handler.
	ErrUnsupportedScheme = errors.New("unsupported reference scheme")

	// ErrPathTraversal indicates a path traversal attempt was blocked.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ResolutionError represents a failure to resolve a $ref.
// This includes unreachable external documents, malformed fragments,
// broken local pointers, unsupported schemes, circular references, and
// path traversal attempts. Resolution failures are fatal to the resolve
// call: the schema cannot be used until the reference is fixed.
type ResolutionError struct {
	// Ref is the reference URI that failed to resolve
	Ref string
	// Scheme is the URI scheme of the reference ("" for local references)
	Scheme string
	// IsCircular is true if this error is due to a circular reference
	IsCircular bool
	// IsBrokenLocal is true if a local pointer does not exist in the document
	IsBrokenLocal bool
	// IsPathTraversal is true if this error is due to a path traversal attempt
	IsPathTraversal bool
	// IsUnsupportedScheme is true if no handler is registered for the scheme
	IsUnsupportedScheme bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ResolutionError) Error() string {
	msg := "resolution error"
	switch {
	case e.IsCircular:
		msg = "circular reference"
	case e.IsBrokenLocal:
		msg = "broken local reference"
	case e.IsPathTraversal:
		msg = "path traversal detected"
	case e.IsUnsupportedScheme:
		msg = "unsupported reference scheme"
		if e.Scheme != "" {
			msg += fmt.Sprintf(" %q", e.Scheme)
		}
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrResolution, and also the more specific sentinels when the
// corresponding flags are set.
func (e *ResolutionError) Is(target error) bool {
	if target == ErrResolution {
		return true
	}
	if target == ErrCircularReference && e.IsCircular {
		return true
	}
	if target == ErrBrokenLocalReference && e.IsBrokenLocal {
		return true
	}
	if target == ErrPathTraversal && e.IsPathTraversal {
		return true
	}
	if target == ErrUnsupportedScheme && e.IsUnsupportedScheme {
		return true
	}
	return false
}

// ResourceLimitError represents a resource exhaustion condition.
// This occurs when resolution exceeds configured limits.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "ref_depth", "document_size", "cached_documents"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as ResourceLimitError has no underlying cause.
func (e *ResourceLimitError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
