package jsontree

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypes(t *testing.T) {
	v, err := Parse(`{"s":"x","n":1.5,"b":true,"z":null,"a":[1],"o":{}}`)
	require.NoError(t, err)
	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"s", "n", "b", "z", "a", "o"}, obj.Keys())

	want := map[string]Kind{
		"s": KindString, "n": KindNumber, "b": KindBoolean,
		"z": KindNull, "a": KindArray, "o": KindObject,
	}
	for k, kind := range want {
		got, ok := obj.Get(k)
		require.True(t, ok, k)
		assert.Equal(t, kind, KindOf(got), k)
	}
	n, _ := obj.Get("n")
	assert.Equal(t, json.Number("1.5"), n)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{name: "trailing comma", input: "{\n  \"a\": 1,\n}", wantLine: 3},
		{name: "empty", input: "", wantLine: 1},
		{name: "truncated", input: `{"a": [1, 2`, wantLine: 1},
		{name: "trailing data", input: `{} {}`, wantLine: 1},
		{name: "garbage", input: `{"a": nope}`, wantLine: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			var se *SyntaxError
			require.True(t, errors.As(err, &se), "want *SyntaxError, got %T", err)
			assert.Equal(t, tt.wantLine, se.Line)
			assert.NotEmpty(t, se.Msg)
		})
	}
}

func TestParseDocumentKeySpans(t *testing.T) {
	src := "{\n  \"a\": 1,\n  \"b\" :{\"c\": \"{not a brace}\", \"d\": [{\"e\": 2}]}\n}"
	doc, err := ParseDocument(src)
	require.NoError(t, err)

	paths := make([]string, 0, len(doc.Keys))
	for _, ks := range doc.Keys {
		paths = append(paths, ks.Path.String())
		assert.Equal(t, byte('"'), src[ks.Start], ks.Path.String())
		assert.Equal(t, byte(':'), src[ks.End-1], ks.Path.String())
	}
	assert.Equal(t, []string{"a", "b", "b.c", "b.d", "b.d[0].e"}, paths)

	ks, ok := doc.Find(Path{Key("b"), Key("c")})
	require.True(t, ok)
	assert.Equal(t, `"c":`, src[ks.Start:ks.End])

	ks, ok = doc.Find(Path{Key("b")})
	require.True(t, ok)
	assert.Equal(t, `"b" :`, src[ks.Start:ks.End])

	_, ok = doc.Find(Path{Key("missing")})
	assert.False(t, ok)
}

func TestParseDocumentEscapedKey(t *testing.T) {
	src := `{"we\"ird": {"k": 1}}`
	doc, err := ParseDocument(src)
	require.NoError(t, err)
	ks, ok := doc.Find(Path{Key(`we"ird`), Key("k")})
	require.True(t, ok)
	assert.Equal(t, `"k":`, src[ks.Start:ks.End])
}

func TestLineColumn(t *testing.T) {
	line, col := LineColumn("ab\ncd", 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
	line, col = LineColumn("ab", 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
}
