package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/jsondiff/internal/compare"
	"github.com/oakwood-commons/jsondiff/internal/filter"
	"github.com/oakwood-commons/jsondiff/internal/formatter"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
	"github.com/oakwood-commons/jsondiff/pkg/logger"
)

// ignoreFlags are the command-line ignore rules. Each flag that is set
// replaces the matching rule from the config file.
type ignoreFlags struct {
	paths   []string
	regex   string
	dynamic bool
	types   []string
	expr    string
}

func (f *ignoreFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&f.paths, "ignore-paths", nil, "comma-separated dotted path prefixes to ignore (e.g. data.items[0].id)")
	fs.StringVar(&f.regex, "ignore-regex", "", "ignore keys whose dotted path matches this regular expression")
	fs.BoolVar(&f.dynamic, "ignore-dynamic", false, "ignore timestamp and UUID string values")
	fs.StringSliceVar(&f.types, "ignore-types", nil, "ignore leaf values of these types: string,number,boolean,null")
	fs.StringVar(&f.expr, "ignore-expr", "", "ignore keys for which this CEL expression over path, key and value is true")
}

// options overlays the flags that were set on base.
func (f *ignoreFlags) options(fs *pflag.FlagSet, base filter.Options) (filter.Options, error) {
	out := base
	if fs.Changed("ignore-paths") {
		out.FieldPaths = filter.ParseFieldPaths(strings.Join(f.paths, ","))
	}
	if fs.Changed("ignore-regex") {
		out.Regex = f.regex
	}
	if fs.Changed("ignore-dynamic") {
		out.IgnoreDynamic = f.dynamic
	}
	if fs.Changed("ignore-types") {
		types, err := filter.ParseTypes(strings.Join(f.types, ","))
		if err != nil {
			return out, fmt.Errorf("--ignore-types: %w", err)
		}
		out.IgnoreTypes = types
	}
	if fs.Changed("ignore-expr") {
		out.Expr = f.expr
	}
	return out, nil
}

type compareOptions struct {
	ignore   ignoreFlags
	format   string
	output   string
	context  int
	width    int
	exitCode bool
}

func newCompareCmd(root *rootOptions) *cobra.Command {
	o := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare LEFT RIGHT",
		Short: "Diff two documents after canonical formatting",
		Long: `Compare two JSON or YAML documents. Both are parsed, filtered by the ignore
rules, re-serialized with two-space indentation and diffed line by line.

LEFT and RIGHT may be files, "-" for stdin, or http(s) URLs.`,
		Example: `  jsondiff compare old.json new.json
  jsondiff compare --ignore-dynamic --ignore-paths meta,items[0].id a.json b.json
  curl -s https://example.com/api | jsondiff compare expected.json -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, root, args[0], args[1])
		},
	}
	fs := cmd.Flags()
	o.ignore.register(fs)
	fs.StringVar(&o.format, "format", "json", "input format: json|yaml|auto")
	fs.StringVarP(&o.output, "output", "o", "text", "output format: text|json|stats")
	fs.IntVarP(&o.context, "context", "C", 3, "unchanged lines shown around each change (-1 shows all)")
	fs.IntVar(&o.width, "width", 0, "truncate lines to this width (0 uses the terminal width)")
	fs.BoolVar(&o.exitCode, "exit-code", false, "exit 1 when the documents differ")
	return cmd
}

func (o *compareOptions) run(cmd *cobra.Command, root *rootOptions, leftArg, rightArg string) error {
	ctx := cmd.Context()
	lgr := logger.FromContext(ctx)

	format, err := jsontree.ParseInputFormat(o.format)
	if err != nil {
		return err
	}
	ignore, err := o.ignore.options(cmd.Flags(), root.cfg.Ignore)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("context") {
		o.context = root.cfg.Display.Context
	}

	reader := newDocumentReader(cmd, root)
	defer reader.Close()
	left, err := reader.Read(ctx, leftArg)
	if err != nil {
		return fmt.Errorf("left: %w", err)
	}
	right, err := reader.Read(ctx, rightArg)
	if err != nil {
		return fmt.Errorf("right: %w", err)
	}

	res, err := compare.Request{Left: left, Right: right, Ignore: ignore, Format: format}.Run()
	if err != nil {
		return err
	}
	lgr.V(1).Info("compared", "added", res.Stats.Added, "removed", res.Stats.Removed, "unchanged", res.Stats.Unchanged)

	out := cmd.OutOrStdout()
	if err := o.render(cmd, out, res); err != nil {
		return err
	}
	if o.exitCode && !res.Stats.Identical {
		return ErrDifferent
	}
	return nil
}

func (o *compareOptions) render(cmd *cobra.Command, out io.Writer, res *compare.Result) error {
	plain := noColor(cmd, out)
	switch strings.ToLower(o.output) {
	case "text", "":
		width := o.width
		if width == 0 && isTerminal(out) {
			width = formatter.TerminalWidth()
		}
		if !res.Stats.Identical {
			fmt.Fprint(out, formatter.RenderDiff(res.Segments, formatter.DiffOptions{
				NoColor: plain,
				Width:   width,
				Context: o.context,
			}))
		}
		_, err := fmt.Fprintln(out, formatter.RenderStats(res.Stats, plain))
		return err
	case "stats":
		_, err := fmt.Fprintln(out, formatter.RenderStats(res.Stats, plain))
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		return fmt.Errorf("unknown output format %q (expected text, json or stats)", o.output)
	}
}
