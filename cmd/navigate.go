package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsondiff/internal/compare"
	"github.com/oakwood-commons/jsondiff/internal/completion"
	"github.com/oakwood-commons/jsondiff/internal/formatter"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
	"github.com/oakwood-commons/jsondiff/internal/limiter"
	"github.com/oakwood-commons/jsondiff/internal/locator"
	"github.com/oakwood-commons/jsondiff/internal/navigator"
)

// pathSteps turns a parsed path into navigator steps.
func pathSteps(p jsontree.Path) []string {
	steps := make([]string, len(p))
	for i, seg := range p {
		if seg.IsIndex {
			steps[i] = strconv.Itoa(seg.Index)
		} else {
			steps[i] = seg.Key
		}
	}
	return steps
}

// readTree reads and parses a single document argument.
func readTree(cmd *cobra.Command, root *rootOptions, arg, inputFormat string) (string, jsontree.Value, error) {
	format, err := jsontree.ParseInputFormat(inputFormat)
	if err != nil {
		return "", nil, err
	}
	reader := newDocumentReader(cmd, root)
	defer reader.Close()
	text, err := reader.Read(cmd.Context(), arg)
	if err != nil {
		return "", nil, err
	}
	v, err := compare.Parse(text, format, "")
	if err != nil {
		return "", nil, err
	}
	return text, v, nil
}

func newPathsCmd(root *rootOptions) *cobra.Command {
	var (
		inputFormat string
		complete    string
		window      limiter.Config
	)
	cmd := &cobra.Command{
		Use:   "paths [FILE]",
		Short: "List every path in a document",
		Long: `List every reachable path in depth-first order, a parent before its
children. Array elements appear as parent[i]. With --complete, list the
autocomplete suggestions for a partially typed comma-separated path list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := window.Validate(); err != nil {
				return err
			}
			_, v, err := readTree(cmd, root, singleDocumentArg(args), inputFormat)
			if err != nil {
				return err
			}
			paths := navigator.ExtractPaths(v)

			var lines []string
			if cmd.Flags().Changed("complete") {
				for _, c := range completion.Suggest(paths, complete, 0) {
					lines = append(lines, c.Text)
				}
			} else {
				lines = paths
			}
			for _, l := range limiter.Apply(window, lines) {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&inputFormat, "format", "json", "input format: json|yaml|auto")
	fs.StringVar(&complete, "complete", "", "print completions for this partial input")
	fs.IntVar(&window.Limit, "limit", 0, "print at most N lines")
	fs.IntVar(&window.Offset, "offset", 0, "skip the first N lines")
	fs.IntVar(&window.Tail, "tail", 0, "print only the last N lines")
	return cmd
}

func newFieldsCmd(root *rootOptions) *cobra.Command {
	var (
		inputFormat string
		path        string
		all         bool
	)
	cmd := &cobra.Command{
		Use:   "fields [FILE]",
		Short: "List the fields below a path",
		Long: `List the child keys of the node at --path with a preview of each value.
Only the first five are shown unless --all is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, v, err := readTree(cmd, root, singleDocumentArg(args), inputFormat)
			if err != nil {
				return err
			}
			p := jsontree.ParsePath(path)
			node, err := navigator.Resolve(v, p)
			if err != nil {
				return fmt.Errorf("path %q: %w", path, err)
			}
			keys := navigator.ChildKeys(v, pathSteps(p))
			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintf(out, "(no fields) %s\n", formatter.Preview(node, 0))
				return nil
			}

			visible, hidden := navigator.VisibleFields(keys, all)
			rows := make([][]string, 0, len(visible))
			for _, k := range visible {
				child, err := navigator.Resolve(node, jsontree.Path{jsontree.Key(k)})
				if err != nil {
					return err
				}
				rows = append(rows, []string{k, formatter.Preview(child, 0)})
			}
			width := 0
			if isTerminal(out) {
				width = formatter.TerminalWidth()
			}
			fmt.Fprint(out, formatter.RenderTable([]string{"FIELD", "VALUE"}, rows, noColor(cmd, out), width))
			if hidden > 0 {
				fmt.Fprintf(out, "… %d more %s (use --all)\n", hidden, pluralize(hidden, "field", "fields"))
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&inputFormat, "format", "json", "input format: json|yaml|auto")
	fs.StringVarP(&path, "path", "p", "", "dotted path of the node to list (empty is the root)")
	fs.BoolVarP(&all, "all", "a", false, "show every field")
	return cmd
}

type locateResult struct {
	Path      string  `json:"path"`
	Start     int     `json:"start"`
	End       int     `json:"end"`
	Line      int     `json:"line"`
	ScrollTop float64 `json:"scrollTop"`
}

func newLocateCmd(root *rootOptions) *cobra.Command {
	var (
		lineHeight   float64
		visibleLines int
		heuristic    bool
		output       string
	)
	cmd := &cobra.Command{
		Use:   "locate FILE PATH",
		Short: "Find where a field's key sits in the source text",
		Long: `Print the byte span of the key named by PATH, its 1-based line and the
scroll offset that centers it in a viewport of --visible-lines lines.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("line-height") {
				lineHeight = root.cfg.Display.LineHeight
			}
			if !cmd.Flags().Changed("visible-lines") {
				visibleLines = root.cfg.Display.VisibleLines
			}

			reader := newDocumentReader(cmd, root)
			defer reader.Close()
			source, err := reader.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := jsontree.ParsePath(args[1])

			var (
				span locator.Span
				ok   bool
			)
			if heuristic {
				span, ok = locator.HeuristicLocate(source, pathSteps(p))
			} else {
				span, ok = locator.Locate(source, p)
			}
			if !ok {
				return fmt.Errorf("field %q not found", args[1])
			}

			res := locateResult{
				Path:      p.String(),
				Start:     span.Start,
				End:       span.End,
				Line:      span.Line(source) + 1,
				ScrollTop: locator.ScrollTarget(source, span, lineHeight, visibleLines),
			}
			out := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case "text", "":
				_, err = fmt.Fprintf(out, "%s: line %d, bytes %d-%d, scroll %g\n", res.Path, res.Line, res.Start, res.End, res.ScrollTop)
				return err
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			default:
				return fmt.Errorf("unknown output format %q (expected text or json)", output)
			}
		},
	}
	fs := cmd.Flags()
	fs.Float64Var(&lineHeight, "line-height", 20, "viewport line height in pixels")
	fs.IntVar(&visibleLines, "visible-lines", 30, "viewport height in lines")
	fs.BoolVar(&heuristic, "heuristic", false, "scan the text instead of parsing it (works on invalid JSON)")
	fs.StringVarP(&output, "output", "o", "text", "output format: text|json")
	return cmd
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
