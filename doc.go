// Package connexion provides runtime schema tooling for services that
// validate request and response payloads against OpenAPI/JSON-Schema
// definitions.
//
// The library consists of two primary packages, consumed independently:
//
//   - jsonref: resolve JSON References ({"$ref": <URI>}) in a schema
//     document, producing a fully inlined, self-contained schema tree.
//     Supports same-document pointers and external documents fetched via
//     http, https, and file URIs through a pluggable handler map.
//   - validator: a keyword-dispatch validation engine extending baseline
//     JSON-Schema Draft-4 semantics with OpenAPI behavior: nullable
//     markers, read-only/write-only property enforcement, and request
//     versus response validation modes.
//
// Structured error types for resolution failures live in cnxerrors.
//
// # Installation
//
//	go get github.com/minet/connexion
//
// # Quick Start
//
// Resolve a schema once at load time, then validate payloads per request:
//
//	import (
//	    "github.com/minet/connexion/jsonref"
//	    "github.com/minet/connexion/validator"
//	)
//
//	resolved, err := jsonref.Resolve(spec)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v := validator.NewRequestValidator(resolved.(map[string]any))
//	if errs := v.Validate(payload); len(errs) > 0 {
//	    for _, e := range errs {
//	        fmt.Println(e)
//	    }
//	}
//
// Resolution performs blocking I/O and belongs at service startup or schema
// reload, not on the hot request path. Validators are read-only after
// construction and safe for unrestricted concurrent use.
package connexion
