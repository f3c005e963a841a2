// Package jsonref resolves JSON References ({"$ref": <URI>} nodes) in
// schema documents, producing a fully inlined, self-contained schema tree.
//
// Resolution handles same-document pointers (#/path/to/node) and external
// references fetched through a pluggable URI-scheme handler map covering
// http, https, and file by default. Fetched documents are cached in a
// caller-suppliable Store so repeated references cost one fetch, and the
// store may be pre-seeded to avoid network access entirely.
//
// # Basic Usage
//
//	var spec map[string]any
//	_ = yaml.Unmarshal(data, &spec)
//
//	resolved, err := jsonref.Resolve(spec)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The input document is never mutated; Resolve returns a deep copy with
// every reachable reference expanded in place.
//
// # Pre-seeding the store
//
//	store := jsonref.Store{
//	    "https://example.com/common.yaml": commonDoc,
//	}
//	resolved, err := jsonref.Resolve(spec, jsonref.WithStore(store))
//
// # Concurrency
//
// A Resolve call is synchronous and owns no shared state beyond the
// caller-supplied store. Concurrent Resolve calls are safe as long as each
// call owns its own store, or access to a shared store is serialized by the
// caller. The usual pattern is one resolution pass at schema-load time,
// before any concurrent request validation begins.
//
// # Failure semantics
//
// An unreachable document, unsupported scheme, broken pointer, or path
// traversal attempt aborts the whole call with a
// *cnxerrors.ResolutionError identifying the offending URI. The store keeps
// only documents fetched before the failure. Circular references do not
// fail resolution; the offending $ref nodes are left in place unexpanded.
package jsonref
