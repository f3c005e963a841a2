package jsonref

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/minet/connexion/cnxerrors"
	"github.com/minet/connexion/internal/jsonutil"
)

const (
	// MaxRefDepth is the maximum depth allowed for nested $ref resolution.
	// This prevents stack overflow from deeply nested (but non-circular)
	// references.
	MaxRefDepth = 100

	// MaxCachedDocuments is the maximum number of external documents stored
	// during a single resolution session. This prevents memory exhaustion
	// from documents with many external references.
	MaxCachedDocuments = 100
)

// Store maps an absolute reference URI to a previously acquired document.
// It is populated lazily during resolution and may be pre-seeded by the
// caller to avoid network calls. The store has no internal locking:
// concurrent writes from parallel Resolve calls are a data race and must be
// serialized by the caller.
type Store map[string]any

// resolver holds the state of a single resolution session.
type resolver struct {
	store    Store
	handlers Handlers
	baseDir  string
	maxDepth int
	logger   Logger

	// resolving tracks refs currently being expanded on the recursion
	// stack, to detect circular references
	resolving map[string]bool
	// unresolved collects circular refs that were left in place
	unresolved []string
}

// Resolve replaces every {"$ref": <URI>} node in spec with the document
// fragment it designates, returning a fully dereferenced copy of the tree.
//
// The input document is never mutated: resolution operates on a deep copy,
// and local references are looked up in a pristine copy of the input rather
// than the partially rewritten output. Local references use the "#/"
// JSON Pointer convention; everything else is acquired through the scheme
// handler map (http, https, and file by default), with fetched documents
// cached in the Store keyed by absolute document URI.
//
// A reference that cannot be resolved fails the whole call with a
// *cnxerrors.ResolutionError naming the offending URI; there is no
// partial-result fallback. A local pointer that does not exist in the
// document is reported as a broken local reference rather than being
// retried externally. Circular references are left in place unexpanded.
func Resolve(spec any, opts ...Option) (any, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.store == nil {
		cfg.store = make(Store)
	}
	if cfg.handlers == nil {
		if cfg.fetcher != nil {
			cfg.handlers = HandlersWithFetcher(cfg.fetcher)
		} else {
			cfg.handlers = DefaultHandlers()
		}
	}

	r := &resolver{
		store:     cfg.store,
		handlers:  cfg.handlers,
		baseDir:   cfg.baseDir,
		maxDepth:  cfg.maxDepth,
		logger:    cfg.logger,
		resolving: make(map[string]bool),
	}

	// Two copies: one pristine tree for local lookups, one working tree
	// that gets rewritten. Resolving against the pristine root avoids
	// feedback where a partially rewritten ancestor corrupts a sibling
	// reference's lookup.
	lookupRoot := jsonutil.DeepCopy(spec)
	work := jsonutil.DeepCopy(spec)

	resolved, err := r.resolve(work, lookupRoot, 0)
	if err != nil {
		return nil, err
	}
	if len(r.unresolved) > 0 {
		r.logger.Warn("circular references left unexpanded", "refs", r.unresolved)
	}
	return resolved, nil
}

// resolve recursively walks the working tree, expanding reference nodes.
// root is the document against which local pointers are resolved; it
// switches to the external document's root when descending into fetched
// content.
func (r *resolver) resolve(node, root any, depth int) (any, error) {
	if depth > r.maxDepth {
		return nil, &cnxerrors.ResourceLimitError{
			ResourceType: "ref_depth",
			Limit:        int64(r.maxDepth),
			Actual:       int64(depth),
			Message:      "structure too deeply nested",
		}
	}

	switch v := node.(type) {
	case map[string]any:
		if ref, ok := v["$ref"].(string); ok {
			return r.resolveRef(v, ref, root, depth)
		}
		for k, val := range v {
			resolved, err := r.resolve(val, root, depth+1)
			if err != nil {
				return nil, err
			}
			v[k] = resolved
		}
		return v, nil

	case []any:
		for i, item := range v {
			resolved, err := r.resolve(item, root, depth+1)
			if err != nil {
				return nil, err
			}
			v[i] = resolved
		}
		return v, nil

	default:
		// Scalars need no resolution.
		return node, nil
	}
}

// resolveRef expands a single reference node.
func (r *resolver) resolveRef(node map[string]any, ref string, root any, depth int) (any, error) {
	// A ref to the document root, or a ref already being expanded on the
	// recursion stack, is circular. Expanding it would recurse forever, so
	// the $ref node is left in place.
	if ref == "#" || ref == "#/" || r.resolving[ref] {
		r.unresolved = append(r.unresolved, ref)
		return node, nil
	}

	if strings.HasPrefix(ref, "#") {
		return r.resolveLocal(node, ref, root, depth)
	}
	return r.resolveExternal(ref, depth)
}

// resolveLocal expands a same-document reference by pointer lookup in the
// pristine root, merging the target's fields into the reference node.
func (r *resolver) resolveLocal(node map[string]any, ref string, root any, depth int) (any, error) {
	tokens := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	target, ok := jsonutil.DeepGet(root, tokens)
	if !ok {
		return nil, &cnxerrors.ResolutionError{
			Ref:           ref,
			IsBrokenLocal: true,
			Message:       "pointer does not exist in document",
		}
	}
	r.logger.Debug("resolved local reference", "ref", ref, "depth", depth)

	// Keep the ref marked while descending into the merged content so a
	// schema that references itself is detected as circular.
	r.resolving[ref] = true
	defer delete(r.resolving, ref)

	targetMap, ok := target.(map[string]any)
	if !ok {
		// A scalar or sequence target replaces the reference node wholesale.
		return r.resolve(jsonutil.DeepCopy(target), root, depth+1)
	}

	delete(node, "$ref")
	for k, val := range targetMap {
		node[k] = jsonutil.DeepCopy(val)
	}
	return r.resolve(node, root, depth+1)
}

// resolveExternal acquires the referenced document through the scheme
// handler map (or the store) and substitutes the designated fragment.
func (r *resolver) resolveExternal(ref string, depth int) (any, error) {
	docURI, fragment, _ := strings.Cut(ref, "#")

	u, err := url.Parse(docURI)
	if err != nil {
		return nil, &cnxerrors.ResolutionError{
			Ref:     ref,
			Message: "invalid reference URI",
			Cause:   err,
		}
	}

	scheme := u.Scheme
	key := docURI
	handlerArg := docURI

	// Refs without a scheme, and file:// URIs, address the local
	// filesystem. The path is normalized against baseDir and checked for
	// traversal before any handler runs.
	if scheme == "" || scheme == "file" {
		p := docURI
		if scheme == "file" {
			p = strings.TrimPrefix(docURI, "file://")
		}
		abs, err := r.secureFilePath(p, ref)
		if err != nil {
			return nil, err
		}
		scheme = "file"
		key = abs
		handlerArg = abs
	}

	// Scoped acquisition: the ref stays marked while the document is
	// fetched and its fragment descended, so failures unwind cleanly and
	// mutual references are detected as circular.
	r.resolving[ref] = true
	defer delete(r.resolving, ref)

	doc, ok := r.store[key]
	if ok {
		r.logger.Debug("reference store hit", "uri", key)
	} else {
		handler, ok := r.handlers[scheme]
		if !ok {
			return nil, &cnxerrors.ResolutionError{
				Ref:                 ref,
				Scheme:              scheme,
				IsUnsupportedScheme: true,
			}
		}
		if len(r.store) >= MaxCachedDocuments {
			return nil, &cnxerrors.ResourceLimitError{
				ResourceType: "cached_documents",
				Limit:        MaxCachedDocuments,
				Actual:       int64(len(r.store)),
				Message:      "too many external references",
			}
		}

		fetched, err := handler(handlerArg)
		if err != nil {
			return nil, &cnxerrors.ResolutionError{
				Ref:     ref,
				Scheme:  scheme,
				Message: "failed to acquire document",
				Cause:   err,
			}
		}
		r.logger.Debug("acquired external document", "uri", key, "scheme", scheme)
		r.store[key] = fetched
		doc = fetched
	}

	target := doc
	if fragment != "" {
		tokens := strings.Split(strings.TrimPrefix(fragment, "/"), "/")
		var found bool
		target, found = jsonutil.DeepGet(doc, tokens)
		if !found {
			return nil, &cnxerrors.ResolutionError{
				Ref:     ref,
				Scheme:  scheme,
				Message: fmt.Sprintf("fragment #%s does not exist in document", fragment),
			}
		}
	}

	// Nested references inside the fetched fragment resolve against the
	// external document's own root, not the primary document.
	return r.resolve(jsonutil.DeepCopy(target), doc, depth+1)
}

// secureFilePath normalizes a file reference against baseDir and rejects
// paths that escape it.
func (r *resolver) secureFilePath(p, ref string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Clean(filepath.Join(r.baseDir, p))
	}

	absBase, err := filepath.Abs(r.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	// filepath.Rel detects traversal attempts, including different volumes
	// on Windows where it returns an error.
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", &cnxerrors.ResolutionError{
			Ref:             ref,
			Scheme:          "file",
			IsPathTraversal: true,
		}
	}
	return absPath, nil
}
