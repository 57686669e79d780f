package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/jsondiff/internal/differ"
)

const reportCSS = `<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #1f2937; }
pre.diff { font-family: ui-monospace, Menlo, monospace; font-size: 13px; line-height: 1.4; }
pre.diff span { display: block; white-space: pre; }
pre.diff .removed { background: #fee2e2; color: #991b1b; }
pre.diff .added { background: #dcfce7; color: #166534; }
</style>
`

var inlineEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Markdown renders the report as markdown with the diff in a fenced
// "diff" block.
func Markdown(r Report) string {
	var b strings.Builder
	st := differ.Summarize(r.Segments)

	fmt.Fprintf(&b, "# %s\n\n", inlineEscaper.Replace(r.title()))
	fmt.Fprintf(&b, "_%s_\n\n", r.timestamp())
	b.WriteString("| Added | Removed | Unchanged |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d |\n\n", st.Added, st.Removed, st.Unchanged)
	if st.Identical {
		b.WriteString("The documents are identical.\n\n")
	}

	b.WriteString("```diff\n")
	for _, l := range r.Lines() {
		b.WriteString(Prefix(l.Kind))
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	b.WriteString("```\n")
	return b.String()
}

// HTML writes a complete HTML page for the report.
func HTML(w io.Writer, r Report) error {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title:          r.title(),
		Head:           []byte(reportCSS),
		Flags:          html.CompletePage | html.HrefTargetBlank,
		RenderNodeHook: renderDiffBlock,
	})
	out := markdown.ToHTML([]byte(Markdown(r)), p, renderer)
	if _, err := io.Copy(w, bytes.NewReader(out)); err != nil {
		return fmt.Errorf("export: write html: %w", err)
	}
	return nil
}

// renderDiffBlock colors each line of a fenced diff block.
func renderDiffBlock(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	cb, ok := node.(*ast.CodeBlock)
	if !ok || string(cb.Info) != "diff" {
		return ast.GoToNext, false
	}
	io.WriteString(w, "<pre class=\"diff\">")
	for _, line := range strings.Split(strings.TrimSuffix(string(cb.Literal), "\n"), "\n") {
		class := "unchanged"
		switch {
		case strings.HasPrefix(line, "+ "):
			class = "added"
		case strings.HasPrefix(line, "- "):
			class = "removed"
		}
		fmt.Fprintf(w, "<span class=\"%s\">", class)
		html.EscapeHTML(w, []byte(line))
		io.WriteString(w, "</span>")
	}
	io.WriteString(w, "</pre>\n")
	return ast.GoToNext, true
}
