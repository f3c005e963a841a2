package jsonref

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minet/connexion/cnxerrors"
)

func TestResolveLocalRef(t *testing.T) {
	spec := map[string]any{
		"a": map[string]any{"value": 1},
		"b": map[string]any{"$ref": "#/a"},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err)

	result, ok := resolved.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"value": 1}, result["b"])
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	spec := map[string]any{
		"a": map[string]any{"value": 1},
		"b": map[string]any{"$ref": "#/a"},
	}

	_, err := Resolve(spec)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"$ref": "#/a"}, spec["b"],
		"the input document must stay untouched")
}

func TestResolveIdempotent(t *testing.T) {
	spec := map[string]any{
		"definitions": map[string]any{
			"Pet": map[string]any{
				"type":     "object",
				"required": []any{"name"},
			},
		},
		"schema": map[string]any{"$ref": "#/definitions/Pet"},
	}

	once, err := Resolve(spec)
	require.NoError(t, err)
	twice, err := Resolve(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice, "resolving an already resolved tree is a no-op")
}

func TestResolveNoRefs(t *testing.T) {
	spec := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err)
	assert.Equal(t, spec, resolved)
}

func TestResolveNestedPointer(t *testing.T) {
	spec := map[string]any{
		"definitions": map[string]any{
			"Pet": map[string]any{
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
				},
			},
		},
		"paths": map[string]any{
			"/pets": map[string]any{
				"schema": map[string]any{"$ref": "#/definitions/Pet"},
			},
		},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err)

	schema, ok := deepGet(t, resolved, "paths", "/pets", "schema").(map[string]any)
	require.True(t, ok)
	assert.Contains(t, schema, "properties")
	assert.NotContains(t, schema, "$ref")
}

func TestResolveScalarTarget(t *testing.T) {
	spec := map[string]any{
		"version": "1.0",
		"info":    map[string]any{"$ref": "#/version"},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err)
	assert.Equal(t, "1.0", resolved.(map[string]any)["info"],
		"a scalar target replaces the reference node wholesale")
}

func TestResolveEscapedPointerTokens(t *testing.T) {
	spec := map[string]any{
		"paths": map[string]any{
			"/pets/{id}": map[string]any{"get": "op"},
		},
		"alias": map[string]any{"$ref": "#/paths/~1pets~1{id}"},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"get": "op"}, resolved.(map[string]any)["alias"])
}

func TestResolveSiblingKeysPreserved(t *testing.T) {
	spec := map[string]any{
		"a": map[string]any{"type": "object"},
		"b": map[string]any{
			"$ref":        "#/a",
			"description": "kept alongside the merged target",
		},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err)

	b := resolved.(map[string]any)["b"].(map[string]any)
	assert.Equal(t, "object", b["type"])
	assert.Equal(t, "kept alongside the merged target", b["description"])
	assert.NotContains(t, b, "$ref")
}

func TestResolveBrokenLocalRef(t *testing.T) {
	spec := map[string]any{
		"b": map[string]any{"$ref": "#/definitions/Missing"},
	}

	_, err := Resolve(spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, cnxerrors.ErrBrokenLocalReference)
	assert.ErrorIs(t, err, cnxerrors.ErrResolution)

	var resErr *cnxerrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "#/definitions/Missing", resErr.Ref)
	assert.True(t, resErr.IsBrokenLocal)
}

func TestResolveRootRefLeftInPlace(t *testing.T) {
	spec := map[string]any{
		"self": map[string]any{"$ref": "#"},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err, "a reference to the document root is circular, not fatal")
	assert.Equal(t, map[string]any{"$ref": "#"}, resolved.(map[string]any)["self"])
}

func TestResolveSelfReferentialSchema(t *testing.T) {
	spec := map[string]any{
		"definitions": map[string]any{
			"Node": map[string]any{
				"properties": map[string]any{
					"children": map[string]any{
						"items": map[string]any{"$ref": "#/definitions/Node"},
					},
				},
			},
		},
		"schema": map[string]any{"$ref": "#/definitions/Node"},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err)

	// One level is expanded; the recursive inner reference stays in place.
	inner := deepGet(t, resolved, "schema", "properties", "children", "items").(map[string]any)
	assert.Equal(t, "#/definitions/Node", inner["$ref"])
}

func TestResolveMutualCircularRefs(t *testing.T) {
	spec := map[string]any{
		"a": map[string]any{"$ref": "#/b"},
		"b": map[string]any{"$ref": "#/a"},
	}

	_, err := Resolve(spec)
	require.NoError(t, err, "mutually circular references terminate without error")
}

func TestResolveExternalFileRef(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pet.yaml", "Pet:\n  type: object\n  required:\n    - name\n")

	spec := map[string]any{
		"schema": map[string]any{"$ref": "pet.yaml#/Pet"},
	}

	store := make(Store)
	resolved, err := Resolve(spec, WithBaseDir(dir), WithStore(store))
	require.NoError(t, err)

	schema := resolved.(map[string]any)["schema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"name"}, schema["required"])

	key, err := filepath.Abs(filepath.Join(dir, "pet.yaml"))
	require.NoError(t, err)
	assert.Contains(t, store, key, "the fetched document is cached by absolute path")
}

func TestResolveExternalWholeDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.json", `{"type": "object"}`)

	spec := map[string]any{
		"schema": map[string]any{"$ref": "defs.json"},
	}

	resolved, err := Resolve(spec, WithBaseDir(dir))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "object"}, resolved.(map[string]any)["schema"])
}

func TestResolveExternalNestedLocalRef(t *testing.T) {
	// A reference inside a fetched document resolves against that
	// document's own root, not the primary document.
	dir := t.TempDir()
	writeFile(t, dir, "defs.yaml", "Pet:\n  $ref: '#/Base'\nBase:\n  type: object\n")

	spec := map[string]any{
		"schema": map[string]any{"$ref": "defs.yaml#/Pet"},
	}

	resolved, err := Resolve(spec, WithBaseDir(dir))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "object"}, resolved.(map[string]any)["schema"])
}

func TestResolveExternalFragmentMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.yaml", "Pet:\n  type: object\n")

	spec := map[string]any{
		"schema": map[string]any{"$ref": "defs.yaml#/Missing"},
	}

	_, err := Resolve(spec, WithBaseDir(dir))
	require.Error(t, err)
	assert.ErrorIs(t, err, cnxerrors.ErrResolution)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestResolvePathTraversalBlocked(t *testing.T) {
	dir := t.TempDir()

	spec := map[string]any{
		"schema": map[string]any{"$ref": "../../../etc/passwd#/root"},
	}

	_, err := Resolve(spec, WithBaseDir(dir))
	require.Error(t, err)
	assert.ErrorIs(t, err, cnxerrors.ErrPathTraversal)

	var resErr *cnxerrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.True(t, resErr.IsPathTraversal)
	assert.Equal(t, "file", resErr.Scheme)
}

func TestResolveUnsupportedScheme(t *testing.T) {
	spec := map[string]any{
		"schema": map[string]any{"$ref": "ftp://host/doc.yaml#/Pet"},
	}

	_, err := Resolve(spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, cnxerrors.ErrUnsupportedScheme)

	var resErr *cnxerrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "ftp", resErr.Scheme)
}

func TestResolvePreSeededStore(t *testing.T) {
	store := Store{
		"https://example.com/defs.json": map[string]any{
			"Pet": map[string]any{"type": "object"},
		},
	}

	var fetched bool
	failFetch := func(url string) ([]byte, string, error) {
		fetched = true
		return nil, "", fmt.Errorf("network disabled in tests")
	}

	spec := map[string]any{
		"schema": map[string]any{"$ref": "https://example.com/defs.json#/Pet"},
	}

	resolved, err := Resolve(spec, WithStore(store), WithFetcher(failFetch))
	require.NoError(t, err)
	assert.False(t, fetched, "a pre-seeded store entry avoids the fetch")
	assert.Equal(t, map[string]any{"type": "object"}, resolved.(map[string]any)["schema"])
}

func TestResolveUnreachableURI(t *testing.T) {
	failFetch := func(url string) ([]byte, string, error) {
		return nil, "", fmt.Errorf("connection refused")
	}

	store := make(Store)
	spec := map[string]any{
		"schema": map[string]any{"$ref": "https://unreachable.invalid/defs.json#/Pet"},
	}

	_, err := Resolve(spec, WithStore(store), WithFetcher(failFetch))
	require.Error(t, err)
	assert.ErrorIs(t, err, cnxerrors.ErrResolution)
	assert.Contains(t, err.Error(), "https://unreachable.invalid/defs.json")
	assert.Empty(t, store, "a failed fetch must not populate the store")
}

func TestResolveCustomSchemeHandler(t *testing.T) {
	handler := func(uri string) (any, error) {
		return map[string]any{"served": uri}, nil
	}

	spec := map[string]any{
		"schema": map[string]any{"$ref": "registry://schemas/pet"},
	}

	resolved, err := Resolve(spec, WithHandler("registry", handler))
	require.NoError(t, err)
	assert.Equal(t,
		map[string]any{"served": "registry://schemas/pet"},
		resolved.(map[string]any)["schema"])
}

func TestResolveDepthLimit(t *testing.T) {
	deep := map[string]any{"leaf": true}
	for i := 0; i < 10; i++ {
		deep = map[string]any{"nested": deep}
	}

	_, err := Resolve(deep, WithMaxDepth(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, cnxerrors.ErrResourceLimit)

	var limitErr *cnxerrors.ResourceLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "ref_depth", limitErr.ResourceType)
}

func TestResolveArrayItems(t *testing.T) {
	spec := map[string]any{
		"definitions": map[string]any{
			"Tag": map[string]any{"type": "string"},
		},
		"parameters": []any{
			map[string]any{"$ref": "#/definitions/Tag"},
			map[string]any{"name": "plain"},
		},
	}

	resolved, err := Resolve(spec)
	require.NoError(t, err)

	params := resolved.(map[string]any)["parameters"].([]any)
	assert.Equal(t, map[string]any{"type": "string"}, params[0])
	assert.Equal(t, map[string]any{"name": "plain"}, params[1])
}

func TestResolveInvalidOption(t *testing.T) {
	_, err := Resolve(map[string]any{}, WithMaxDepth(-1))
	require.Error(t, err)
	assert.ErrorIs(t, err, cnxerrors.ErrConfig)
}

// deepGet walks a resolved tree for assertions, failing the test on a
// missing key.
func deepGet(t *testing.T, root any, keys ...string) any {
	t.Helper()
	current := root
	for _, k := range keys {
		m, ok := current.(map[string]any)
		require.True(t, ok, "expected a map at %q", k)
		current, ok = m[k]
		require.True(t, ok, "missing key %q", k)
	}
	return current
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
