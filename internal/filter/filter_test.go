package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

func mustParse(t *testing.T, s string) jsontree.Value {
	t.Helper()
	v, err := jsontree.Parse(s)
	require.NoError(t, err)
	return v
}

func filtered(t *testing.T, input string, opts Options) string {
	t.Helper()
	out, err := Apply(mustParse(t, input), opts)
	require.NoError(t, err)
	got, err := jsontree.Canonical(jsontree.Format(out))
	require.NoError(t, err)
	return got
}

func canonical(t *testing.T, s string) string {
	t.Helper()
	out, err := jsontree.Canonical(s)
	require.NoError(t, err)
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		want  string
	}{
		{
			name:  "field path prefix",
			input: `{"a":1,"b":{"c":2,"d":3}}`,
			opts:  Options{FieldPaths: []string{"b.c"}},
			want:  `{"a":1,"b":{"d":3}}`,
		},
		{
			name:  "comma separated field paths are trimmed",
			input: `{"a":1,"b":{"c":2,"d":3},"e":4}`,
			opts:  Options{FieldPaths: []string{" b.c , e ", ""}},
			want:  `{"a":1,"b":{"d":3}}`,
		},
		{
			name:  "prefix match is textual",
			input: `{"id":1,"identity":2,"name":3}`,
			opts:  Options{FieldPaths: []string{"id"}},
			want:  `{"name":3}`,
		},
		{
			name:  "array index paths",
			input: `{"items":[{"id":1,"v":"x"},{"id":2,"v":"y"}]}`,
			opts:  Options{FieldPaths: []string{"items[1].id"}},
			want:  `{"items":[{"id":1,"v":"x"},{"v":"y"}]}`,
		},
		{
			name:  "regex is a substring search",
			input: `{"meta":{"requestId":"a","traceId":"b","name":"n"}}`,
			opts:  Options{Regex: `Id$`},
			want:  `{"meta":{"name":"n"}}`,
		},
		{
			name:  "dynamic values",
			input: `{"at":"2024-01-01T10:00:00Z","id":"123E4567-E89B-12D3-A456-426614174000","msg":"hello"}`,
			opts:  Options{IgnoreDynamic: true},
			want:  `{"msg":"hello"}`,
		},
		{
			name:  "dynamic rule keeps array elements",
			input: `{"list":["2024-01-01T10:00:00Z","x"]}`,
			opts:  Options{IgnoreDynamic: true},
			want:  `{"list":["2024-01-01T10:00:00Z","x"]}`,
		},
		{
			name:  "type rule drops leaves only",
			input: `{"s":"x","n":1,"b":false,"z":null,"o":{"s":"y","k":2},"a":["x"]}`,
			opts:  Options{IgnoreTypes: []Type{TypeString, TypeNull}},
			want:  `{"n":1,"b":false,"o":{"k":2},"a":["x"]}`,
		},
		{
			name:  "cel expression",
			input: `{"count":150,"small":3,"name":"svc","nested":{"count":500}}`,
			opts:  Options{Expr: `key == "count" && value > 100`},
			want:  `{"small":3,"name":"svc","nested":{}}`,
		},
		{
			name:  "cel eval errors keep the member",
			input: `{"a":"text","b":5}`,
			opts:  Options{Expr: `value > 1`},
			want:  `{"a":"text"}`,
		},
		{
			name:  "rules combine",
			input: `{"a":1,"b":"2024-05-05T00:00:00","c":{"d":true}}`,
			opts:  Options{FieldPaths: []string{"a"}, IgnoreDynamic: true, Regex: `^c\.d`},
			want:  `{"c":{}}`,
		},
		{
			name:  "scalars pass through",
			input: `"2024-01-01T10:00:00Z"`,
			opts:  Options{IgnoreDynamic: true, IgnoreTypes: []Type{TypeString}},
			want:  `"2024-01-01T10:00:00Z"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, canonical(t, tt.want), filtered(t, tt.input, tt.opts))
		})
	}
}

func TestApplyQuotedKeyPaths(t *testing.T) {
	in := `{"a.b":1,"a":{"b":2},"m":{"x.y":3,"z":4}}`

	got := filtered(t, in, Options{FieldPaths: []string{"a.b"}})
	assert.Equal(t, canonical(t, `{"a.b":1,"a":{},"m":{"x.y":3,"z":4}}`), got, "a.b addresses the nested key")

	got = filtered(t, in, Options{FieldPaths: []string{`["a.b"]`, `m["x.y"]`}})
	assert.Equal(t, canonical(t, `{"a":{"b":2},"m":{"z":4}}`), got)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := mustParse(t, `{"a":{"b":1,"c":2}}`)
	before := jsontree.Format(in)
	_, err := Apply(in, Options{FieldPaths: []string{"a.b"}})
	require.NoError(t, err)
	assert.Equal(t, before, jsontree.Format(in))
}

func TestApplyNativeTree(t *testing.T) {
	in := mustParse(t, `{"id":"8f14e45f-ceea-467f-a0e6-2f5b2c1d9a11","user":{"name":"ann","seen":"2024-01-01T10:00:00Z","admin":false},"items":[{"n":1,"ok":true}]}`)
	out, err := Apply(in, Options{IgnoreDynamic: true, IgnoreTypes: []Type{TypeBoolean}})
	require.NoError(t, err)

	want := map[string]any{
		"user":  map[string]any{"name": "ann"},
		"items": []any{map[string]any{"n": int64(1)}},
	}
	if diff := cmp.Diff(want, jsontree.Native(out)); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

// Every member of the output must exist at the same path in the input.
func TestApplyNeverAddsKeys(t *testing.T) {
	in := mustParse(t, `{"a":{"b":[{"c":1,"d":"2024-01-01T00:00:00"}],"e":null},"f":"x"}`)
	optsList := []Options{
		{},
		{IgnoreDynamic: true},
		{FieldPaths: []string{"a.b"}},
		{Regex: "e"},
		{IgnoreTypes: []Type{TypeNumber}},
	}
	for _, opts := range optsList {
		out, err := Apply(in, opts)
		require.NoError(t, err)
		assertSubset(t, out, in)
	}
}

func assertSubset(t *testing.T, out, in jsontree.Value) {
	t.Helper()
	switch o := out.(type) {
	case *jsontree.Object:
		src, ok := in.(*jsontree.Object)
		require.True(t, ok)
		for _, m := range o.Members() {
			orig, ok := src.Get(m.Key)
			require.True(t, ok, "key %q not in input", m.Key)
			assertSubset(t, m.Value, orig)
		}
	case []jsontree.Value:
		src, ok := in.([]jsontree.Value)
		require.True(t, ok)
		require.Len(t, o, len(src))
		for i := range o {
			assertSubset(t, o[i], src[i])
		}
	default:
		assert.Equal(t, in, out)
	}
}

func TestExprValueReference(t *testing.T) {
	f, err := Compile(Options{Expr: `key.startsWith("tmp")`})
	require.NoError(t, err)
	assert.False(t, f.expr.usesValue)

	f, err = Compile(Options{Expr: `has(value.kind) && value.kind == "cache"`})
	require.NoError(t, err)
	assert.True(t, f.expr.usesValue)

	in := `{"tmpA":1,"svc":{"kind":"cache","inner":{"kind":"cache"}},"db":{"kind":"sql"}}`
	assert.Equal(t, canonical(t, `{"db":{"kind":"sql"}}`), filtered(t, in, Options{Expr: `key.startsWith("tmp") || (type(value) == map && has(value.kind) && value.kind == "cache")`}))
}

func TestNativeCacheConvertsOnce(t *testing.T) {
	root := mustParse(t, `{"a":{"b":{"c":[1,{"d":true}]}}}`)
	cache := nativeCache{}

	whole := cache.convert(root).(map[string]any)
	assert.Len(t, cache, 4)

	inner, _ := root.(*jsontree.Object).Get("a")
	again := cache.convert(inner).(map[string]any)
	assert.Len(t, cache, 4, "nested objects come from the cache")
	assert.Equal(t, whole["a"], again)
	if diff := cmp.Diff(jsontree.Native(root), any(whole)); diff != "" {
		t.Errorf("convert() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(Options{Regex: "("})
	assert.ErrorContains(t, err, "invalid ignore regex")

	_, err = Compile(Options{Expr: "key +"})
	assert.ErrorContains(t, err, "invalid ignore expression")

	_, err = Compile(Options{Expr: `"not a bool"`})
	assert.ErrorContains(t, err, "must return bool")

	_, err = Compile(Options{IgnoreTypes: []Type{"object"}})
	assert.Error(t, err)
}

func TestIsDynamic(t *testing.T) {
	assert.True(t, IsDynamic("2024-01-01T10:00:00Z"))
	assert.True(t, IsDynamic("2024-01-01T10:00:00.123+02:00"))
	assert.True(t, IsDynamic("550e8400-e29b-41d4-a716-446655440000"))
	assert.False(t, IsDynamic("hello"))
	assert.False(t, IsDynamic("2024-01-01"))
	assert.False(t, IsDynamic("550e8400-e29b-41d4-a716-44665544000"))
	assert.False(t, IsDynamic("x550e8400-e29b-41d4-a716-446655440000"))
}

func TestOptionsIsZero(t *testing.T) {
	assert.True(t, Options{}.IsZero())
	assert.True(t, Options{FieldPaths: []string{" ", ""}}.IsZero())
	assert.False(t, Options{IgnoreDynamic: true}.IsZero())
	assert.False(t, Options{Regex: "x"}.IsZero())
}

func TestParseTypes(t *testing.T) {
	got, err := ParseTypes("string, bool,,null")
	require.NoError(t, err)
	assert.Equal(t, []Type{TypeString, TypeBoolean, TypeNull}, got)
	_, err = ParseTypes("string,array")
	assert.Error(t, err)
}
