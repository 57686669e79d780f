package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsondiff/internal/differ"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hello", truncate("hello", 0))
	assert.Equal(t, "hello w...", truncate("hello world!", 10))
	assert.Equal(t, "he", truncate("hello", 2))
	assert.Equal(t, "日本...", truncate("日本語テキスト", 7))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
	assert.Equal(t, "日 ", padRight("日", 3))
}

func TestTerminalWidthDefault(t *testing.T) {
	assert.Positive(t, TerminalWidth())
}

func TestPreview(t *testing.T) {
	v, err := jsontree.Parse(`{"o":{"a":1,"b":2},"one":{"a":1},"arr":[1],"arr2":[1,2],"s":"text","n":1.50,"z":null}`)
	require.NoError(t, err)
	obj := v.(*jsontree.Object)
	get := func(k string) jsontree.Value { x, _ := obj.Get(k); return x }

	assert.Equal(t, "{2 keys}", Preview(get("o"), 0))
	assert.Equal(t, "{1 key}", Preview(get("one"), 0))
	assert.Equal(t, "[1 item]", Preview(get("arr"), 0))
	assert.Equal(t, "[2 items]", Preview(get("arr2"), 0))
	assert.Equal(t, `"text"`, Preview(get("s"), 0))
	assert.Equal(t, `"t...`, Preview(get("s"), 5))
	assert.Equal(t, "1.5", Preview(get("n"), 0))
	assert.Equal(t, "null", Preview(get("z"), 0))
}

func TestRenderTableNoColor(t *testing.T) {
	out := RenderTable([]string{"KEY", "VALUE"}, [][]string{
		{"name", `"alice"`},
		{"tags", "[2 items]"},
	}, true, 0)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "KEY   VALUE", lines[0])
	assert.Equal(t, strings.Repeat("─", 15), lines[1])
	assert.Equal(t, `name  "alice"`, lines[2])
	assert.Equal(t, "tags  [2 items]", lines[3])
}

func TestRenderTableMaxWidth(t *testing.T) {
	out := RenderTable([]string{"STATUS", "URL"}, [][]string{
		{"200", "https://example.com/a/very/long/path/that/keeps/going"},
	}, true, 30)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "200     https://example.com...", lines[2])
	assert.LessOrEqual(t, len(lines[2]), 30)
}

func TestRenderTableColor(t *testing.T) {
	out := RenderTable([]string{"K"}, [][]string{{"v"}}, false, 0)
	assert.Contains(t, out, "\x1b[")
	assert.Empty(t, RenderTable(nil, nil, true, 0))
}

func scenario() []differ.Segment {
	left := "{\n  \"a\": 1,\n  \"b\": 2,\n  \"c\": 3,\n  \"d\": 4,\n  \"e\": 5\n}"
	right := "{\n  \"a\": 1,\n  \"b\": 2,\n  \"c\": 30,\n  \"d\": 4,\n  \"e\": 5\n}"
	return differ.Lines(left, right)
}

func TestRenderDiffAllLines(t *testing.T) {
	out := RenderDiff(scenario(), DiffOptions{NoColor: true, Context: -1})
	assert.Equal(t, strings.Join([]string{
		"  {",
		`    "a": 1,`,
		`    "b": 2,`,
		`-   "c": 3,`,
		`+   "c": 30,`,
		`    "d": 4,`,
		`    "e": 5`,
		"  }",
	}, "\n")+"\n", out)
}

func TestRenderDiffContext(t *testing.T) {
	out := RenderDiff(scenario(), DiffOptions{NoColor: true, Context: 1})
	assert.Equal(t, strings.Join([]string{
		"@@ 2 unchanged lines @@",
		`    "b": 2,`,
		`-   "c": 3,`,
		`+   "c": 30,`,
		`    "d": 4,`,
		"@@ 2 unchanged lines @@",
	}, "\n")+"\n", out)

	only := RenderDiff(scenario(), DiffOptions{NoColor: true, Context: 0})
	assert.Equal(t, "@@ 3 unchanged lines @@\n-   \"c\": 3,\n+   \"c\": 30,\n@@ 3 unchanged lines @@\n", only)

	same := RenderDiff(differ.Lines("{}", "{}"), DiffOptions{NoColor: true})
	assert.Equal(t, "@@ 1 unchanged line @@\n", same)
}

func TestRenderDiffWidthAndColor(t *testing.T) {
	out := RenderDiff(scenario(), DiffOptions{NoColor: true, Context: -1, Width: 8})
	assert.Contains(t, out, "-   \"...\n")

	colored := RenderDiff(scenario(), DiffOptions{Context: -1})
	assert.Contains(t, colored, "\x1b[")
}

func TestRenderStats(t *testing.T) {
	assert.Equal(t, "No differences", RenderStats(differ.Stats{Identical: true, Unchanged: 3}, true))
	assert.Equal(t, "1 added, 2 removed, 3 unchanged", RenderStats(differ.Stats{Added: 1, Removed: 2, Unchanged: 3}, true))
}

func TestColorJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ColorJSON(`{"a":1}`, true))
	colored := ColorJSON(`{"a":1}`, false)
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "a")
}

func TestSetTheme(t *testing.T) {
	defer SetTheme(Colors{})
	SetTheme(Colors{Added: defaultRemoved})
	assert.Equal(t, removedStyle.GetForeground(), addedStyle.GetForeground())
}
