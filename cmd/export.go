package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsondiff/internal/compare"
	"github.com/oakwood-commons/jsondiff/internal/export"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

// exportFormats maps a format name to its renderer.
var exportFormats = map[string]func(io.Writer, export.Report) error{
	"pdf":  export.PDF,
	"html": export.HTML,
	"png":  export.PNG,
	"md": func(w io.Writer, r export.Report) error {
		_, err := io.WriteString(w, export.Markdown(r))
		return err
	},
}

// exportFormat picks the format from --as, then from the output file
// extension, then falls back to pdf.
func exportFormat(as, outPath string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(as))
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(outPath)), ".")
		switch name {
		case "htm":
			name = "html"
		case "markdown":
			name = "md"
		case "":
			name = "pdf"
		}
	}
	if _, ok := exportFormats[name]; !ok {
		return "", fmt.Errorf("unknown export format %q (expected pdf, html, png or md)", name)
	}
	return name, nil
}

// exportFileName is the default report name, e.g. json-diff-20240301-120000.pdf.
func exportFileName(now time.Time, ext string) string {
	return "json-diff-" + now.Format("20060102-150405") + "." + ext
}

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		ignore      ignoreFlags
		inputFormat string
		as          string
		outPath     string
		title       string
	)
	cmd := &cobra.Command{
		Use:   "export LEFT RIGHT",
		Short: "Write a comparison report as PDF, HTML, PNG or markdown",
		Long: `Compare LEFT and RIGHT and write the diff as a report. The format comes from
--as, or from the extension of --output. Without --output the report is
written to json-diff-<timestamp>.<ext> in the current directory; "-" writes
to stdout. The report is rendered in memory first, so a failure never
leaves a partial file behind.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := exportFormat(as, outPath)
			if err != nil {
				return err
			}
			format, err := jsontree.ParseInputFormat(inputFormat)
			if err != nil {
				return err
			}
			opts, err := ignore.options(cmd.Flags(), root.cfg.Ignore)
			if err != nil {
				return err
			}

			reader := newDocumentReader(cmd, root)
			defer reader.Close()
			left, err := reader.Read(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("left: %w", err)
			}
			right, err := reader.Read(cmd.Context(), args[1])
			if err != nil {
				return fmt.Errorf("right: %w", err)
			}
			res, err := compare.Request{Left: left, Right: right, Ignore: opts, Format: format}.Run()
			if err != nil {
				return err
			}

			now := time.Now()
			var buf bytes.Buffer
			if err := exportFormats[name](&buf, export.Report{Title: title, Generated: now, Segments: res.Segments}); err != nil {
				return fmt.Errorf("render %s: %w", name, err)
			}

			if outPath == stdinArg {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if outPath == "" {
				outPath = exportFileName(now, name)
			}
			if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
				return err
			}
			infof(cmd, "wrote %s", outPath)
			return nil
		},
	}
	fs := cmd.Flags()
	ignore.register(fs)
	fs.StringVar(&inputFormat, "format", "json", "input format: json|yaml|auto")
	fs.StringVar(&as, "as", "", "report format: pdf|html|png|md")
	fs.StringVarP(&outPath, "output", "o", "", `output file ("-" for stdout)`)
	fs.StringVar(&title, "title", "", "report title")
	return cmd
}
