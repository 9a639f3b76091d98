package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyJSONPaths(t *testing.T) {
	rec, err := parseJSON(`{"object": {"nestedArray": [1, 2], "nestedString": "x"}, "n": null}`)
	require.NoError(t, err)

	out := ApplyJSONPaths(rec, []JSONPath{
		{Path: "object.nestedString"},
		{Path: "object.nestedArray[1]", Alias: "second"},
		{Path: "$.object.nestedArray[0]", Alias: "first"},
		{Path: "missing"},
		{Path: "n"},
		{Path: ""},
	})

	assert.Equal(t, []string{"object.nestedString", "second", "first", "missing", "n"}, out.Keys())
	assert.Equal(t, map[string]any{
		"object.nestedString": "x",
		"second":              2.0,
		"first":               1.0,
		"missing":             NotFound,
		"n":                   NotFound,
	}, recordMap(out))
}

func TestApplyJSONPaths_TopLevelArray(t *testing.T) {
	rec, err := parseJSON(`[{"a": 1}, {"a": 2}]`)
	require.NoError(t, err)

	out := ApplyJSONPaths(rec, []JSONPath{{Path: "[1].a", Alias: "a"}})
	assert.Equal(t, map[string]any{"a": 2.0}, recordMap(out))
}

func TestApplyJSONPaths_NoActivePaths(t *testing.T) {
	rec := NewRecord()
	rec.Set("a", 1.0)

	assert.Same(t, rec, ApplyJSONPaths(rec, nil))
	assert.Same(t, rec, ApplyJSONPaths(rec, []JSONPath{{Path: "", Alias: "x"}}))
}

func TestApplyJSONPaths_InvalidPath(t *testing.T) {
	out := ApplyJSONPaths(NewRecord(), []JSONPath{{Path: "a[", Alias: "broken"}})
	assert.Equal(t, map[string]any{"broken": NotFound}, recordMap(out))

	out = ApplyJSONPaths(nil, []JSONPath{{Path: "a"}})
	assert.Equal(t, map[string]any{"a": NotFound}, recordMap(out))
}

func TestApplyJSONPaths_LiteralPropertyNames(t *testing.T) {
	rec, err := parseJSON(`{"my-key": 1, "user id": 2, "content-type": "json", "a": {"b-c": [5]}, "1abc": 3, "日本": 4}`)
	require.NoError(t, err)

	out := ApplyJSONPaths(rec, []JSONPath{
		{Path: "my-key"},
		{Path: "user id"},
		{Path: "$.content-type", Alias: "ct"},
		{Path: "a.b-c[0]"},
		{Path: "1abc"},
		{Path: "日本"},
		{Path: "a.b-c[3]"},
	})

	assert.Equal(t, map[string]any{
		"my-key":   1.0,
		"user id":  2.0,
		"ct":       "json",
		"a.b-c[0]": 5.0,
		"1abc":     3.0,
		"日本":       4.0,
		"a.b-c[3]": NotFound,
	}, recordMap(out))
}

func TestApplyJSONPaths_FullSyntax(t *testing.T) {
	rec, err := parseJSON(`{"items": [{"kind": "a", "v": 1}, {"kind": "b", "v": 2}]}`)
	require.NoError(t, err)

	out := ApplyJSONPaths(rec, []JSONPath{
		{Path: "$.items[?(@.kind == 'b')].v", Alias: "b"},
		{Path: "items[*].v", Alias: "firstV"},
	})
	assert.Equal(t, map[string]any{"b": 2.0, "firstV": 1.0}, recordMap(out))
}

func TestSimplePath(t *testing.T) {
	for _, tt := range []struct {
		path string
		ok   bool
	}{
		{"a", true},
		{"a.b-c[0]", true},
		{"$.a[1].b", true},
		{"[0].a", true},
		{"a[", false},
		{"a.*", false},
		{"@.a", false},
		{"$", false},
		{"a..b", false},
		{"items[?(@.x)]", false},
	} {
		_, ok := simplePath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
	}
}
