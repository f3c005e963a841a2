package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepCopy(t *testing.T) {
	original := map[string]any{
		"name": "pet",
		"tags": []any{"a", "b"},
		"meta": map[string]any{"count": float64(2)},
	}

	cp, ok := DeepCopy(original).(map[string]any)
	require.True(t, ok)
	require.Equal(t, original, cp)

	// Mutating the copy must not leak into the original.
	cp["meta"].(map[string]any)["count"] = float64(99)
	cp["tags"].([]any)[0] = "changed"
	assert.Equal(t, float64(2), original["meta"].(map[string]any)["count"])
	assert.Equal(t, "a", original["tags"].([]any)[0])
}

func TestDeepCopyNil(t *testing.T) {
	assert.Nil(t, DeepCopy(nil))
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"string", "x", "string"},
		{"float64", float64(1.5), "number"},
		{"int", 3, "integer"},
		{"bool", true, "boolean"},
		{"array", []any{}, "array"},
		{"object", map[string]any{}, "object"},
		{"typed slice", []string{"a"}, "array"},
		{"typed map", map[string]string{}, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.in))
		})
	}
}

func TestTypeMatches(t *testing.T) {
	assert.True(t, TypeMatches("string", "string"))
	assert.True(t, TypeMatches("integer", "number"), "integer is a subset of number")
	assert.True(t, TypeMatches("number", "integer"), "whole-valued numbers may satisfy integer")
	assert.False(t, TypeMatches("string", "number"))
	assert.False(t, TypeMatches("boolean", "integer"))
}

func TestToFloat64(t *testing.T) {
	for _, in := range []any{float64(2), float32(2), int(2), int64(2), int32(2), uint64(2)} {
		got, ok := ToFloat64(in)
		assert.True(t, ok, "%T", in)
		assert.Equal(t, float64(2), got)
	}

	_, ok := ToFloat64("2")
	assert.False(t, ok)
	_, ok = ToFloat64(true)
	assert.False(t, ok, "booleans are not numbers")
}

func TestEnsureList(t *testing.T) {
	assert.Nil(t, EnsureList(nil))
	assert.Equal(t, []any{"a"}, EnsureList("a"))
	assert.Equal(t, []any{"a", "b"}, EnsureList([]any{"a", "b"}))
}

func TestUnescapeToken(t *testing.T) {
	assert.Equal(t, "/pets/{id}", UnescapeToken("~1pets~1{id}"))
	assert.Equal(t, "a~b", UnescapeToken("a~0b"))
	assert.Equal(t, "plain", UnescapeToken("plain"))
}

func TestDeepGet(t *testing.T) {
	root := map[string]any{
		"definitions": map[string]any{
			"Pet": map[string]any{"type": "object"},
		},
		"tags": []any{"a", map[string]any{"name": "b"}},
	}

	tests := []struct {
		name  string
		path  []string
		want  any
		found bool
	}{
		{"map key", []string{"definitions", "Pet", "type"}, "object", true},
		{"array index", []string{"tags", "0"}, "a", true},
		{"through array", []string{"tags", "1", "name"}, "b", true},
		{"missing key", []string{"definitions", "Absent"}, nil, false},
		{"index out of range", []string{"tags", "5"}, nil, false},
		{"non-numeric index", []string{"tags", "x"}, nil, false},
		{"descend into scalar", []string{"definitions", "Pet", "type", "deeper"}, nil, false},
		{"empty path", nil, root, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := DeepGet(root, tt.path)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDeepGetEscapedTokens(t *testing.T) {
	root := map[string]any{
		"paths": map[string]any{"/pets": "ok"},
	}
	got, found := DeepGet(root, []string{"paths", "~1pets"})
	require.True(t, found)
	assert.Equal(t, "ok", got)
}
