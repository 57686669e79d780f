package compare

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsondiff/internal/differ"
	"github.com/oakwood-commons/jsondiff/internal/filter"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

func TestRunScenario(t *testing.T) {
	res, err := Run(`{"a":1,"b":{"c":2}}`, `{"a":1,"b":{"c":3}}`, filter.Options{})
	require.NoError(t, err)

	require.Len(t, res.Segments, 4)
	assert.Equal(t, differ.Unchanged, res.Segments[0].Kind)
	assert.Contains(t, res.Segments[0].Text, `"a": 1,`)
	assert.Contains(t, res.Segments[0].Text, `"b": {`)
	assert.Equal(t, differ.Removed, res.Segments[1].Kind)
	assert.Contains(t, res.Segments[1].Text, `"c": 2`)
	assert.Equal(t, differ.Added, res.Segments[2].Kind)
	assert.Contains(t, res.Segments[2].Text, `"c": 3`)
	assert.Equal(t, differ.Unchanged, res.Segments[3].Kind)

	assert.Equal(t, res.Left, differ.Reconstruct(res.Segments, differ.Left))
	assert.Equal(t, res.Right, differ.Reconstruct(res.Segments, differ.Right))
	assert.Equal(t, 1, res.Stats.Added)
	assert.Equal(t, 1, res.Stats.Removed)
	assert.False(t, res.Stats.Identical)
}

func TestRunFieldPaths(t *testing.T) {
	opts := filter.Options{FieldPaths: filter.ParseFieldPaths("b.c")}
	res, err := Run(`{"a":1,"b":{"c":2,"d":3}}`, `{"a":1,"b":{"d":3}}`, opts)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": {\n    \"d\": 3\n  }\n}", res.Left)
	assert.True(t, res.Stats.Identical)
}

func TestRunParseErrorLeft(t *testing.T) {
	res, err := Run(`{"a":1,}`, `{"a":1}`, filter.Options{})
	assert.Nil(t, res)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, SideLeft, pe.Side)
	assert.Equal(t, 1, pe.Line)
	assert.Contains(t, err.Error(), "JSON parse error (left)")

	var se *jsontree.SyntaxError
	assert.True(t, errors.As(err, &se))
}

func TestRunParseErrorRight(t *testing.T) {
	_, err := Run(`{}`, "{\n  \"a\": ", filter.Options{})
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, SideRight, pe.Side)
	assert.Equal(t, 2, pe.Line)
}

func TestRunEmptyIsEmptyObject(t *testing.T) {
	res, err := Run("", "  \n", filter.Options{})
	require.NoError(t, err)
	assert.Equal(t, "{}", res.Left)
	assert.Equal(t, "{}", res.Right)
	assert.True(t, res.Stats.Identical)

	res, err = Run("", `{"a":true}`, filter.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Removed)
	assert.Equal(t, 3, res.Stats.Added)
}

func TestRunInvalidIgnoreOptions(t *testing.T) {
	_, err := Run(`{}`, `{}`, filter.Options{Regex: "("})
	require.Error(t, err)
	var pe *ParseError
	assert.False(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "ignore options")
}

func TestRunMalformedScalar(t *testing.T) {
	for _, left := range []string{"nul", "tru", "hello world", "1,2"} {
		t.Run(left, func(t *testing.T) {
			res, err := Run(left, `{}`, filter.Options{})
			assert.Nil(t, res)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, SideLeft, pe.Side)
			assert.Contains(t, err.Error(), "JSON parse error (left)")

			_, err = Request{Left: left, Right: `{}`, Format: jsontree.FormatAuto}.Run()
			assert.ErrorAs(t, err, &pe, "auto mode does not read scalars as YAML")
		})
	}
}

func TestRunDynamicAndYAML(t *testing.T) {
	req := Request{
		Left:   "id: 2b1d0a36-1c1f-4f0e-9b6b-3f9a0d7b2c11\nname: x\n",
		Right:  `{"id":"8C2E5C4A-0D45-4B43-A2B1-0A1B2C3D4E5F","name":"x"}`,
		Ignore: filter.Options{IgnoreDynamic: true},
		Format: jsontree.FormatAuto,
	}
	res, err := req.Run()
	require.NoError(t, err)
	assert.True(t, res.Stats.Identical)
	assert.Equal(t, "{\n  \"name\": \"x\"\n}", res.Left)
}

func TestFormat(t *testing.T) {
	out, err := Format(`{"b":[1,2.50,{}],"a":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": [\n    1,\n    2.5,\n    {}\n  ],\n  \"a\": \"x\"\n}", out)

	again, err := Format(out)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = Format(`[1,`)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Empty(t, pe.Side)
	assert.Contains(t, err.Error(), "JSON parse error:")

	out, err = Format("")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}
